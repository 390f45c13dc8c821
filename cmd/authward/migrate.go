package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/authward/authward/store/postgres"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Run all pending schema migrations against the PostgreSQL token store.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	ctx := context.Background()

	cmd.Println("Connecting to database...")
	st, err := postgres.Open(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer st.Close()

	cmd.Println("Migrations completed successfully")
	return nil
}
