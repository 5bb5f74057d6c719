package cli

import (
	"quizduel-service/internal/config"
	"quizduel-service/internal/infra/memory"
	"quizduel-service/internal/infra/postgres"
	"quizduel-service/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewSeedCmd loads the built-in question bank into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the built-in questions into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if err := runMigrationsWithConfig(cmd.Context(), cfg, logger); err != nil {
				return err
			}
			db, err := openBun(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := postgres.Seed(cmd.Context(), db, memory.SeedQuestions(), reset)
			if err != nil {
				return err
			}
			logger.Info("questions seeded", zap.Int("inserted", n), zap.Bool("reset", reset))
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "delete existing questions first")
	return cmd
}
