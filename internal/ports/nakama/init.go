package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"

	"seabattle/internal/app"
	"seabattle/internal/bot"
	"seabattle/internal/config"
	"seabattle/internal/domain"
	"seabattle/internal/engine"
	"seabattle/internal/ports/memory"
)

// InitModule wires the Sea Battle module into the Nakama runtime: engine,
// session store, orchestrator, bot driver, RPCs and the match handler.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("InitModule: could not load game config: %v", err)
	}
	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("InitModule: could not load bot identities: %v", err)
	}
	cfg := config.GetGameConfig()

	eng := domain.NewEngine(nil)
	store := memory.NewStore()
	svc := app.NewService(eng, store)
	driver := bot.NewDriver(svc, svc, logger, bot.Config{
		MinDelay:    cfg.BotMinDelay(),
		MaxDelay:    cfg.BotMaxDelay(),
		LockTimeout: cfg.BotLockTimeout(),
	}, nil)

	if err := engine.Register(engine.Descriptor{Metadata: eng.Metadata(), MatchName: MatchNameSeaBattle}); err != nil {
		return err
	}

	if err := initializer.RegisterRpc(RpcIDQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcIDListGames, rpcListGames); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameSeaBattle, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return &matchHandler{svc: svc, driver: driver}, nil
	}); err != nil {
		return err
	}

	logger.Info("Sea Battle Go module loaded.")
	return nil
}
