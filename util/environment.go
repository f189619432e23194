package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

var environmentLogger = log.With().Str("logger_name", "util::environment").Logger()

type tableServerEnvironment struct {
	PersistMethod   string
	RedisHost       string
	RedisPort       string
	RedisPW         string
	RedisDB         string
	NatsURL         string
	RestPort        string
	ActionTimeoutMs string
	BigBlind        string
	SeatCount       string
	MinPlayers      string
}

// Env is a helper object for accessing environment variables.
var Env = &tableServerEnvironment{
	PersistMethod:   "PERSIST_METHOD",
	RedisHost:       "REDIS_HOST",
	RedisPort:       "REDIS_PORT",
	RedisPW:         "REDIS_PW",
	RedisDB:         "REDIS_DB",
	NatsURL:         "NATS_URL",
	RestPort:        "REST_PORT",
	ActionTimeoutMs: "ACTION_TIMEOUT_MS",
	BigBlind:        "BIG_BLIND",
	SeatCount:       "SEAT_COUNT",
	MinPlayers:      "MIN_PLAYERS",
}

func (t *tableServerEnvironment) GetPersistMethod() string {
	method := os.Getenv(t.PersistMethod)
	if method == "" {
		return "memory"
	}
	return strings.ToLower(method)
}

func (t *tableServerEnvironment) GetRedisHost() string {
	host := os.Getenv(t.RedisHost)
	if host == "" {
		msg := fmt.Sprintf("%s is not defined", t.RedisHost)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return host
}

func (t *tableServerEnvironment) GetRedisPort() int {
	return t.intVar(t.RedisPort, 6379)
}

func (t *tableServerEnvironment) GetRedisPW() string {
	return os.Getenv(t.RedisPW)
}

func (t *tableServerEnvironment) GetRedisDB() int {
	return t.intVar(t.RedisDB, 0)
}

func (t *tableServerEnvironment) GetNatsURL() string {
	url := os.Getenv(t.NatsURL)
	if url == "" {
		msg := fmt.Sprintf("%s is not defined", t.NatsURL)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return url
}

func (t *tableServerEnvironment) GetRestPort() int {
	return t.intVar(t.RestPort, 8080)
}

func (t *tableServerEnvironment) GetActionTimeoutMs() int {
	return t.intVar(t.ActionTimeoutMs, 25000)
}

func (t *tableServerEnvironment) GetBigBlind() int64 {
	return int64(t.intVar(t.BigBlind, 2))
}

func (t *tableServerEnvironment) GetSeatCount() int {
	return t.intVar(t.SeatCount, 9)
}

func (t *tableServerEnvironment) GetMinPlayers() int {
	return t.intVar(t.MinPlayers, 2)
}

func (t *tableServerEnvironment) intVar(name string, defaultVal int) int {
	str := os.Getenv(name)
	if str == "" {
		return defaultVal
	}
	num, err := strconv.Atoi(str)
	if err != nil {
		msg := fmt.Sprintf("Invalid value for %s: %s", name, str)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return num
}
