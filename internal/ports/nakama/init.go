package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"

	"roevhul/internal/config"
)

// InitModule wires RPCs and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameRoevhul, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(), nil
	}); err != nil {
		return err
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if path := env[ConfigFileEnvKey]; path != "" {
		if err := config.LoadGameConfig(path); err != nil {
			logger.Error("InitModule: Failed to load game config %s: %v", path, err)
			return err
		}
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		logger.Error("InitModule: Invalid game config: %v", err)
		return err
	}
	logger.Info("Røvhul Go module loaded (seats=%d+%d, bot_level=%s, feed=%t).", cfg.HumanSeats, cfg.BotSeats, cfg.BotLevel, cfg.RedisAddr != "")
	return nil
}
