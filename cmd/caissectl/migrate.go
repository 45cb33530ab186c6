package main

import (
	"fmt"

	"caisse/internal/database"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and the currency balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if err := database.Migrate(e.db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if err := e.ledger().Init(cmd.Context()); err != nil {
				return fmt.Errorf("init ledger: %w", err)
			}
			fmt.Println("schema up to date")
			return nil
		},
	}
}
