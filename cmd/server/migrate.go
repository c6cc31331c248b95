package main

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/gameshelf/gameshelf/internal/infrastructure/db/postgres"
	"github.com/gameshelf/gameshelf/internal/pkg/config"
)

// NewMigrateCmd creates the migrate subcommand and its up/down/version children.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
		Long:  `Apply, roll back or inspect the embedded PostgreSQL migrations.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: withMigrator(func(cmd *cobra.Command, m *postgres.Migrator) error {
			if err := m.Up(); err != nil {
				return err
			}
			cmd.Println("Migrations applied")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		RunE: withMigrator(func(cmd *cobra.Command, m *postgres.Migrator) error {
			if err := m.Down(); err != nil {
				return err
			}
			cmd.Println("Migrations rolled back")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: withMigrator(func(cmd *cobra.Command, m *postgres.Migrator) error {
			v, dirty, err := m.Version()
			if err != nil {
				return err
			}
			cmd.Printf("version=%d dirty=%t\n", v, dirty)
			return nil
		}),
	})

	return cmd
}

func withMigrator(run func(*cobra.Command, *postgres.Migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		url, err := databaseURL(cmd.Context(), envconfig.OsLookuper())
		if err != nil {
			return err
		}
		m, err := postgres.NewMigrator(url)
		if err != nil {
			return err
		}
		defer m.Close()
		return run(cmd, m)
	}
}

// databaseURL reads only the postgres section so migrations run without auth secrets.
func databaseURL(ctx context.Context, lookuper envconfig.Lookuper) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var pg config.PostgresConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &pg, Lookuper: lookuper}); err != nil {
		return "", fmt.Errorf("load database config: %w", err)
	}
	return pg.URL, nil
}
