package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/roombooker/internal/auth"
	"github.com/example/roombooker/internal/config"
	"github.com/example/roombooker/internal/ledger"
	"github.com/example/roombooker/internal/scheduler"
	"github.com/example/roombooker/internal/web"
)

func newServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Run the pipeline on an interval and serve the status page",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if !cfg.HasCookieKeys() {
				return fmt.Errorf("COOKIE_HASH_KEY and COOKIE_BLOCK_KEY are required (try `roombooker keys`)")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			r, d, err := buildRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			authStore := auth.NewStore(d, cfg.CookieHashKey, cfg.CookieBlockKey)
			if err := authStore.Migrate(ctx); err != nil {
				return err
			}

			s := &scheduler.Scheduler{Runner: r, Interval: cfg.RunInterval}
			go func() { _ = s.Run(ctx) }()

			ws := &web.Server{
				Auth:   authStore,
				Ledger: ledger.New(d),
				Rules:  config.DefaultRules(),
				Rooms:  config.DefaultRoomTiers(),
			}
			return web.Start(ctx, cfg.ListenAddr, ws.Routes())
		},
	}
}
