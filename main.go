package main

import (
	"os"

	"github.com/rs/zerolog"
	"voyager.com/holdem/game"
	"voyager.com/holdem/logging"
	"voyager.com/holdem/nats"
	"voyager.com/holdem/rest"
	"voyager.com/holdem/scheduler"
	"voyager.com/holdem/util"
)

var mainLogger = logging.GetZeroLogger("main::main", os.Stdout)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG_LOG") == "1" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	persistMethod := util.Env.GetPersistMethod()
	mainLogger.Info().Msgf("Using %s for table state persistence", persistMethod)

	var store game.PersistTableState
	if persistMethod == "redis" {
		store = game.NewPersistTableState(
			persistMethod,
			util.Env.GetRedisHost(),
			util.Env.GetRedisPort(),
			util.Env.GetRedisPW(),
			util.Env.GetRedisDB(),
		)
	} else {
		store = game.NewMemoryTableStateTracker()
	}

	adapter, err := nats.NewTableAdapter(util.Env.GetNatsURL())
	if err != nil {
		mainLogger.Fatal().Err(err).Msg("Unable to connect to NATS")
	}
	defer adapter.Close()

	config := game.GameConfig{
		BigBlind:        util.Env.GetBigBlind(),
		ActionTimeoutMs: util.Env.GetActionTimeoutMs(),
		SeatCount:       util.Env.GetSeatCount(),
		MinPlayers:      util.Env.GetMinPlayers(),
	}

	var manager *game.Manager
	sched := scheduler.NewInProcess(func(payload scheduler.Payload) {
		manager.OnTimerFired(payload)
	})
	defer sched.Stop()

	manager = game.NewManager(config, store, sched, adapter)
	adapter.BindManager(manager)

	mainLogger.Info().Int("port", util.Env.GetRestPort()).Msg("Table server starting")
	rest.RunRestServer(manager, adapter, util.Env.GetRestPort())
}
