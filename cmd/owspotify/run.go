package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/ThePyrotechnic/overwatch-spotify/internal/classifier"
	"github.com/ThePyrotechnic/overwatch-spotify/internal/config"
	"github.com/ThePyrotechnic/overwatch-spotify/internal/credentials"
	"github.com/ThePyrotechnic/overwatch-spotify/internal/dispatch"
	"github.com/ThePyrotechnic/overwatch-spotify/internal/domain"
	"github.com/ThePyrotechnic/overwatch-spotify/internal/engine"
	"github.com/ThePyrotechnic/overwatch-spotify/internal/presence"
	"github.com/ThePyrotechnic/overwatch-spotify/internal/sampler"
	"github.com/ThePyrotechnic/overwatch-spotify/internal/spotify"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the polling daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon(configPath(cmd))
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// AppOptions is the full dependency graph of the daemon. Kept as a
// variable-producing function so tests can validate the graph with
// fx.ValidateApp.
func AppOptions(cfgPath string) fx.Option {
	return fx.Options(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Provide(
			func() (*config.Config, error) { return config.Load(cfgPath) },
			newLogger,
			spotify.New,
			engine.New,
			func(log *zap.Logger) domain.Sampler { return sampler.New(log) },
			func(log *zap.Logger, cfg *config.Config) domain.Classifier {
				return classifier.New(log, cfg.Signatures)
			},
			func(log *zap.Logger) domain.PresenceChecker { return presence.New(log) },
			func(log *zap.Logger) domain.CredentialStore { return credentials.NewFileStore(log) },
			func(c *spotify.Client) domain.Controller { return c },
			func(log *zap.Logger, cfg *config.Config, ctrl domain.Controller, pres domain.PresenceChecker) domain.Dispatcher {
				return dispatch.New(log, cfg.Mapping, ctrl, pres)
			},
		),
		fx.Invoke(registerHooks),
	)
}

// registerHooks ties the engine to the application lifecycle. The initial
// token refresh happens here so a dead refresh token is a startup failure,
// not a silent mid-game one.
func registerHooks(lc fx.Lifecycle, logger *zap.Logger, client *spotify.Client, eng *engine.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.EnsureAuthenticated(ctx); err != nil {
				return err
			}
			logger.Info("owspotify daemon started")
			return eng.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			return eng.Stop(ctx)
		},
	})
}

func runDaemon(cfgPath string) error {
	app := fx.New(AppOptions(cfgPath))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	return app.Stop(context.Background())
}
