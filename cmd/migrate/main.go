package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/murkotick/marketplace-service/internal/config"
	"github.com/murkotick/marketplace-service/internal/pkg/logging"
	"github.com/murkotick/marketplace-service/internal/pkg/spannerschema"
)

// migrate applies migrations/001_initial_schema.sql to a Spanner database.
// With --create it also provisions the instance and database, which is what
// a fresh emulator needs:
//
//	export SPANNER_EMULATOR_HOST=localhost:9010
//	go run ./cmd/migrate --create --database projects/test-project/instances/emulator-instance/databases/test-db
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		dbName     string
		ddlPath    string
		create     bool
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Spanner schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if dbName == "" {
				dbName = cfg.Storage.SpannerDatabase
			}
			if dbName == "" {
				return fmt.Errorf("a database is required (--database or storage.spanner_database)")
			}
			db, err := spannerschema.ParseDatabase(dbName)
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			stmts, err := spannerschema.ReadStatements(ddlPath)
			if err != nil {
				return fmt.Errorf("read DDL: %w", err)
			}
			if dryRun {
				for _, s := range stmts {
					fmt.Println(s + ";")
				}
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			admin, err := spannerschema.NewAdmin(ctx)
			if err != nil {
				return err
			}
			defer admin.Close()

			if create {
				if err := admin.EnsureInstance(ctx, db); err != nil {
					return err
				}
				err = admin.CreateDatabase(ctx, db, stmts)
			} else {
				err = admin.Apply(ctx, db, stmts)
			}
			if err != nil {
				return err
			}
			logger.Info("schema applied", zap.Int("statements", len(stmts)), zap.String("database", db.Name()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&dbName, "database", "", "Spanner database name")
	cmd.Flags().StringVar(&ddlPath, "ddl", "migrations/001_initial_schema.sql", "DDL file to apply")
	cmd.Flags().BoolVar(&create, "create", false, "create the instance and database when missing")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the statements instead of applying them")
	return cmd
}
