package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/revelare/revelare-web/cli/config"
	"github.com/revelare/revelare-web/internal/pagination"
	"github.com/revelare/revelare-web/internal/search"
	"github.com/revelare/revelare-web/pkg/logger"
	"github.com/revelare/revelare-web/pkg/models"
	"github.com/spf13/cobra"
)

var (
	searchScenario string
	searchPage     int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search books by meaning",
	Long: `Run a ranked search. Scenarios: 3, 5, 10 (TF-IDF terms),
0 (without TF-IDF) and -1 (without semantic ranking).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(strings.Join(args, " "))
		scenario := models.ParseScenario(searchScenario)
		if !cmd.Flags().Changed("scenario") {
			if cfg, err := config.Load(); err == nil {
				scenario = models.ParseScenario(cfg.Search.Scenario)
			}
		}

		orch := search.NewOrchestrator(newClient(), logger.GetLogger())
		snap, err := orch.Load(cmd.Context(), query, scenario, searchPage)
		if err != nil {
			var verr *models.ValidationError
			if errors.As(err, &verr) {
				return errors.New(verr.Message)
			}
			return fmt.Errorf("failed to load search results: %w", explain(err))
		}
		printResults(cmd.OutOrStdout(), snap)
		return nil
	},
}

func printResults(w io.Writer, snap search.Snapshot) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Results for %q", snap.Query)))
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%s · %d results", snap.Scenario.Label(), snap.TotalResults)))
	if len(snap.Results) == 0 {
		fmt.Fprintln(w, "No books found.")
		return
	}
	fmt.Fprintln(w)
	for _, b := range snap.Results {
		fmt.Fprintf(w, "  %6d  %3d%%  %s\n", b.ID, b.SimilarityPercent(), b.Title)
	}
	if snap.Controls.Total > 1 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, pageLine(snap.Controls))
	}
}

// pageLine renders the pager window with the current page bracketed.
func pageLine(c pagination.Controls) string {
	var parts []string
	for _, t := range pagination.Window(c.Current, c.Total) {
		s := t.String()
		if !t.Ellipsis && t.Page == c.Current {
			s = "[" + s + "]"
		}
		parts = append(parts, s)
	}
	return mutedStyle.Render("Page " + strings.Join(parts, " "))
}

func init() {
	searchCmd.Flags().StringVarP(&searchScenario, "scenario", "s", "", "ranking scenario (3, 5, 10, 0, -1)")
	searchCmd.Flags().IntVarP(&searchPage, "page", "p", 1, "result page")
}
