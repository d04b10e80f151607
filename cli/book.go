package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/revelare/revelare-web/internal/detail"
	"github.com/revelare/revelare-web/pkg/logger"
	"github.com/revelare/revelare-web/pkg/models"
	"github.com/spf13/cobra"
)

var (
	bookQuery    string
	bookScenario string
	bookRaw      bool
)

var bookCmd = &cobra.Command{
	Use:   "book <id>",
	Short: "Show book details",
	Long: `Show a book. With --query the originating search is re-run and
up to ten similar books are listed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver := detail.NewResolver(newClient(), 5*time.Second, logger.GetLogger())
		res, err := resolver.Resolve(cmd.Context(), args[0], bookQuery, models.ParseScenario(bookScenario))
		if err != nil {
			if errors.Is(err, detail.ErrBookNotFound) {
				return errors.New("Book not found")
			}
			return fmt.Errorf("failed to load book details: %w", explain(err))
		}

		doc := res.Document()
		if bookRaw {
			fmt.Fprintln(cmd.OutOrStdout(), doc)
			return nil
		}
		out, err := renderMarkdown(doc)
		if err != nil {
			logger.Debug("markdown_render_failed", "error", err.Error())
			out = doc
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

// renderMarkdown styles a markdown document for the terminal.
func renderMarkdown(doc string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		return "", err
	}
	return r.Render(doc)
}

func init() {
	bookCmd.Flags().StringVarP(&bookQuery, "query", "q", "", "originating search, for similar books")
	bookCmd.Flags().StringVarP(&bookScenario, "scenario", "s", "", "ranking scenario of the originating search")
	bookCmd.Flags().BoolVar(&bookRaw, "raw", false, "print markdown without styling")
}
