package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/config"
	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/database"
	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/database/sqlite"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the score schema and verify the database connection",
	Long: `Connects to the configured SCORE_BACKEND and creates the results table.

Only the postgres and sqlite backends have a schema; memory and redis need nothing.`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch cfg.ScoreBackend {
	case config.BackendPostgres:
		db, err := database.NewDatabaseService(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		version, err := db.ServerVersion(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "データベースバージョン: %s\n", version)
		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}

	case config.BackendSQLite:
		// Open がスキーマを作成する
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer store.Close()

	default:
		fmt.Fprintf(out, "SCORE_BACKEND=%s はスキーマを持ちません\n", cfg.ScoreBackend)
		return nil
	}

	fmt.Fprintf(out, "成功: %s のスキーマを作成しました\n", cfg.ScoreBackend)
	return nil
}
