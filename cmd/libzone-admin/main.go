// libzone-admin runs maintenance tasks against the configured store:
// schema migration, demo catalog seeding, admin account creation and
// expired signup-code cleanup.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kp7829294-create/libzone/config"
	"github.com/kp7829294-create/libzone/repository"
	"github.com/kp7829294-create/libzone/repository/factory"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	cfgPath string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "libzone-admin",
		Short:         "Maintenance commands for the LibZone service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(
		a.migrateCmd(),
		a.seedCmd(),
		a.createAdminCmd(),
		a.purgeOTPsCmd(),
	)
	return root
}

// withStore loads config, opens and migrates the store, and closes it after fn.
func (a *app) withStore(ctx context.Context, fn func(repository.Store) error) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	store, err := factory.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return fn(store)
}
