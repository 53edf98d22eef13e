package nakama

import (
	"context"
	"database/sql"

	"zkhunt/internal/app"
	"zkhunt/internal/config"
	"zkhunt/internal/hub"
	"zkhunt/internal/ports"
	"zkhunt/internal/zk"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs and the relay match handler for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if err := config.LoadGameConfig(config.DefaultPath, env); err != nil {
		logger.Error("InitModule: Could not load game config: %v", err)
		return err
	}
	cfg := config.GetGameConfig()

	verifier, err := zk.NewVerifier(zk.Backend(cfg.ProofBackend))
	if err != nil {
		logger.Error("InitModule: Could not create verifier: %v", err)
		return err
	}

	store := NewNakamaSessionStore(nk, cfg.SessionTTL())
	notifier := ports.MultiNotifier{
		NewNakamaNotificationAdapter(nk, store),
		hub.NewClient(hub.Options{
			URL:     cfg.HubURL,
			Secret:  cfg.HubSecret,
			Issuer:  cfg.HubIssuer,
			Timeout: cfg.HubTimeout(),
		}),
	}

	service := app.NewService(app.Deps{
		Store:       store,
		Verifier:    verifier,
		Keys:        zk.NewFileKeys(cfg.MoveVKPath, cfg.SearchVKPath),
		Notifier:    notifier,
		TotalRounds: cfg.TotalRounds,
	}, nil)

	if err := NewHandlers(service, nk).Register(initializer); err != nil {
		return err
	}
	if err := initializer.RegisterMatch(MatchNameSession, NewMatch); err != nil {
		return err
	}

	logger.Info("zkhunt Go module loaded (rounds=%d, backend=%s, hub=%t).", cfg.TotalRounds, cfg.ProofBackend, cfg.HubURL != "")
	return nil
}
