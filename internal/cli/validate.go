package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quiz-trainer/internal/domain"
)

// NewValidateCmd checks a quiz document file without starting anything.
func NewValidateCmd() *cobra.Command {
	var generated bool
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a quiz document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema := domain.HandAuthored
			if generated {
				schema = domain.Generated
			}
			doc, err := readQuizFile(args[0], schema)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d questions, valid (%s)\n", args[0], len(doc.Questions), schema.Name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&generated, "generated", false, "apply the stricter rules used for generated quizzes")
	return cmd
}

func readQuizFile(path string, schema domain.Schema) (domain.QuizDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.QuizDocument{}, err
	}
	return schema.Parse(data)
}
