package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joestump/govuk-admin/internal/models"
	"github.com/joestump/govuk-admin/internal/store"
)

func newSeedCmd() *cobra.Command {
	var (
		users int
		seed  int64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert example users, posts and accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, database, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			seeder := models.NewSeeder(store.NewRecordStore(database), seed)
			if err := seeder.Seed(cmd.Context(), users); err != nil {
				return err
			}
			logger.Info("seeded example data", zap.Int("users", users), zap.Int64("seed", seed))
			return nil
		},
	}
	cmd.Flags().IntVar(&users, "users", 8, "number of users to create")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	return cmd
}
