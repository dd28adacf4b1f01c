package main

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, database, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			logger.Info("migrations complete")
			return nil
		},
	}
}
