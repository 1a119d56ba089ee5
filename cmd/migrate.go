package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tiresync/config"
	"tiresync/migrations"
)

var migrateDownSteps int

var migrateCmd = &cobra.Command{
	Use:   "db:migrate",
	Short: "Apply database migrations (or roll back with --down N)",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.NewDB()
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		if migrateDownSteps > 0 {
			if err := migrations.Down(db, migrateDownSteps); err != nil {
				return err
			}
		} else if err := migrations.Up(db); err != nil {
			return err
		}
		version, dirty, err := migrations.Version(db)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d (dirty=%v, driver=%s)\n", version, dirty, db.Dialector.Name())
		return nil
	},
}

func init() {
	migrateCmd.Flags().IntVar(&migrateDownSteps, "down", 0, "Roll back N migrations instead of applying")
	rootCmd.AddCommand(migrateCmd)
}
