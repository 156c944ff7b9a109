package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/roombooker/internal/auth"
	"github.com/example/roombooker/internal/config"
	"github.com/example/roombooker/internal/db"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage status-page users",
	}
	cmd.AddCommand(newUserAddCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var username, password string

	c := &cobra.Command{
		Use:   "add",
		Short: "Add a status-page user (username/password)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			ctx := context.Background()
			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			store := auth.NewStore(d, cfg.CookieHashKey, cfg.CookieBlockKey)
			if err := store.Migrate(ctx); err != nil {
				return err
			}
			if err := store.CreateUser(ctx, username, password); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "created user %q\n", username)
			return nil
		},
	}

	c.Flags().StringVar(&username, "username", "", "username")
	c.Flags().StringVar(&password, "password", "", "password")
	_ = c.MarkFlagRequired("username")
	_ = c.MarkFlagRequired("password")
	return c
}
