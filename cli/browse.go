package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/revelare/revelare-web/cli/config"
	"github.com/revelare/revelare-web/cli/tui"
	"github.com/revelare/revelare-web/internal/upstream"
	"github.com/revelare/revelare-web/pkg/logger"
	"github.com/revelare/revelare-web/pkg/models"
	"github.com/spf13/cobra"
)

var browseScenario string

var browseCmd = &cobra.Command{
	Use:   "browse [query]",
	Short: "Search interactively",
	Long:  `Open the interactive browser. Results update as you type.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := tui.Options{
			Scenario: models.ParseScenario(browseScenario),
			Query:    strings.Join(args, " "),
			Logger:   logger.GetLogger(),
		}
		if cfg, err := config.Load(); err == nil {
			if !cmd.Flags().Changed("scenario") {
				opts.Scenario = models.ParseScenario(cfg.Search.Scenario)
			}
			if d, err := time.ParseDuration(cfg.Search.Debounce); err == nil {
				opts.Debounce = d
			}
			opts.Session = cfg.Session()
		}
		client := newClient()
		if !client.Configured() {
			return fmt.Errorf("API is not configured (run: revelare config set api.base_url <url>)")
		}
		opts.Source = client
		opts.Bookmarks = client

		final, err := tea.NewProgram(tui.New(opts), tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout())).Run()
		if err != nil {
			return err
		}
		if m, ok := final.(tui.Model); ok && m.SessionExpired() {
			return explain(upstream.ErrUnauthorized)
		}
		return nil
	},
}

func init() {
	browseCmd.Flags().StringVarP(&browseScenario, "scenario", "s", "", "ranking scenario (3, 5, 10, 0, -1)")
}
