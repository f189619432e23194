package game

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// RedisTableStateTracker stores serialized tables in redis, one key per
// room.
type RedisTableStateTracker struct {
	rdclient *redis.Client
}

func NewRedisTableStateTracker(redisHost string, redisPort int, redisPW string, redisDB int) *RedisTableStateTracker {
	rdclient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", redisHost, redisPort),
		Password: redisPW,
		DB:       redisDB,
	})
	return &RedisTableStateTracker{
		rdclient: rdclient,
	}
}

func (r *RedisTableStateTracker) key(roomID string) string {
	return fmt.Sprintf("table|%s", roomID)
}

func (r *RedisTableStateTracker) Load(roomID string) (*SerializedTable, error) {
	data, err := r.rdclient.Get(context.Background(), r.key(roomID)).Result()
	if err == redis.Nil {
		return nil, newHandError(StateUnavailable, "table state for room %s is not found", roomID)
	} else if err != nil {
		return nil, errors.Wrapf(err, "unable to load table state for room %s", roomID)
	}
	return DecodeTable([]byte(data))
}

func (r *RedisTableStateTracker) Save(roomID string, state *SerializedTable) error {
	data, err := state.Encode()
	if err != nil {
		return err
	}
	err = r.rdclient.Set(context.Background(), r.key(roomID), data, 0).Err()
	if err != nil {
		return errors.Wrapf(err, "unable to save table state for room %s", roomID)
	}
	return nil
}

func (r *RedisTableStateTracker) Remove(roomID string) error {
	err := r.rdclient.Del(context.Background(), r.key(roomID)).Err()
	if err != nil {
		return errors.Wrapf(err, "unable to remove table state for room %s", roomID)
	}
	return nil
}
