package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/roombooker/internal/config"
	"github.com/example/roombooker/internal/db"
	"github.com/example/roombooker/internal/ledger"
	"github.com/example/roombooker/internal/libcal"
	"github.com/example/roombooker/internal/runner"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the booking pipeline once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			r, d, err := buildRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			return r.Run(ctx)
		},
	}
}

// buildRunner opens the database, runs migrations, and assembles the
// pipeline shared by the run and server commands.
func buildRunner(ctx context.Context, cfg config.Config) (*runner.Runner, *db.DB, error) {
	d, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := d.Ping(ctx); err != nil {
		d.Close()
		return nil, nil, fmt.Errorf("db ping: %w", err)
	}

	led := ledger.New(d)
	if err := led.Migrate(ctx); err != nil {
		d.Close()
		return nil, nil, err
	}

	site, err := libcal.New(libcal.Options{
		SiteURL:    cfg.SiteURL,
		AuthURL:    cfg.AuthURL,
		LocationID: cfg.LocationID,
		Creds:      libcal.Credentials{Username: cfg.SSOUsername, Password: cfg.SSOPassword},
	})
	if err != nil {
		d.Close()
		return nil, nil, err
	}

	return &runner.Runner{
		Site:     site,
		Ledger:   led,
		Rules:    config.DefaultRules(),
		Rooms:    config.DefaultRoomTiers(),
		Cooldown: cfg.Cooldown,
	}, d, nil
}
