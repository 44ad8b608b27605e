package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quiz-trainer/internal/config"
	"quiz-trainer/internal/domain"
	"quiz-trainer/internal/infra/postgres"
	"quiz-trainer/internal/logger"
)

// NewImportCmd validates a quiz file and stores it in the library.
func NewImportCmd(configPath *string) *cobra.Command {
	var quizID string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a quiz document into the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			log := logger.New(cfg.Log)
			defer log.Sync()

			doc, err := readQuizFile(args[0], domain.HandAuthored)
			if err != nil {
				return err
			}
			id := quizID
			if id == "" {
				id = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}

			if err := runMigrationsWithConfig(cmd.Context(), cfg, log); err != nil {
				return err
			}
			db := openBun(cfg.Postgres.URL)
			defer db.Close()

			if err := postgres.NewQuizStore(db).Save(cmd.Context(), id, doc); err != nil {
				return err
			}
			log.Info("quiz imported", zap.String("quiz", id), zap.Int("questions", len(doc.Questions)))
			return nil
		},
	}
	cmd.Flags().StringVar(&quizID, "id", "", "library id (defaults to the file name)")
	return cmd
}
