package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/54b3r/askdoc-go/internal/history"
)

// NewHistoryCmd constructs the `askdoc history` command, which lists the
// recent question/answer turns recorded for a document.
func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <file>",
		Short: "List past questions and answers for a document",
		Long: `List the most recent question/answer turns recorded for a document.

Turns are stored in a local SQLite database (~/.askdoc/history.db by
default, ASKDOC_HISTORY_DB to override). History is keyed by the document
path as it was passed to askdoc.

Examples:
  askdoc history report.txt
  askdoc history report.txt --limit 50`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := history.ResolvePath()
			if err != nil {
				return err
			}
			if path == history.Disabled {
				return fmt.Errorf("history: disabled via ASKDOC_HISTORY_DB=%s", history.Disabled)
			}

			hs, err := history.Open(path)
			if err != nil {
				return err
			}
			defer hs.Close()

			// Turns are keyed by the document path as it was passed to
			// askdoc. Try the raw argument first, then its absolute form.
			turns, err := hs.Recent(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if len(turns) == 0 {
				if abs, absErr := filepath.Abs(args[0]); absErr == nil {
					turns, err = hs.Recent(cmd.Context(), abs, limit)
					if err != nil {
						return err
					}
				}
			}
			if len(turns) == 0 {
				fmt.Printf("no history for %s\n", args[0])
				return nil
			}

			for _, t := range turns {
				fmt.Printf("[%s]\nQ: %s\nA: %s\n\n",
					t.CreatedAt.Format("2006-01-02 15:04"), t.Question, t.Answer)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of turns to show")

	return cmd
}
