// Package cli is the revelare command line: search, book detail,
// bookmarks and the admin dashboard against the Revelare API.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/revelare/revelare-web/cli/config"
	"github.com/revelare/revelare-web/internal/upstream"
	"github.com/revelare/revelare-web/pkg/logger"
	"github.com/revelare/revelare-web/pkg/models"
	"github.com/spf13/cobra"
)

var (
	apiURL    string
	logLevel  string
	assumeYes bool
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
)

var rootCmd = &cobra.Command{
	Use:           "revelare",
	Short:         "Revelare book discovery from the terminal",
	Long:          `Search books by meaning, read details, keep bookmarks and manage the catalog.`,
	Version:       "0.3.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logger.WARN
		if cfg, err := config.Load(); err == nil && cfg.Logging.Level != "" {
			level = logger.LogLevel(strings.ToLower(cfg.Logging.Level))
		}
		if logLevel != "" {
			level = logger.LogLevel(strings.ToLower(logLevel))
		}
		logger.Init(level, false, cmd.ErrOrStderr())
	},
}

var initCmd = &cobra.Command{
	Use:   "init [api-url]",
	Short: "Create the configuration file",
	Long:  `Create ~/.revelare/config.yaml pointing at the Revelare API.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := apiURL
		if len(args) == 1 {
			url = args[0]
		}
		if url == "" {
			url = os.Getenv("REVELARE_API_URL")
		}
		if err := config.Init(url); err != nil {
			return err
		}
		path, _ := config.GetConfigPath()
		printSuccess(cmd.OutOrStdout(), "Configuration written to "+path)
		if url == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "Set the API with: revelare config set api.base_url <url>")
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Revelare API base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(bookCmd)
	rootCmd.AddCommand(bookmarkCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(systemCmd)
	rootCmd.AddCommand(browseCmd)
}

func printSuccess(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render("✓ "+msg))
}

func printError(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render("✗ "+msg))
}

// serverURL resolves the API base URL: flag, then env, then config file.
func serverURL() string {
	if apiURL != "" {
		return strings.TrimRight(apiURL, "/")
	}
	url, err := config.GetServerURL()
	if err != nil {
		return ""
	}
	return url
}

// newClient builds the API client. Without a base URL every call fails
// with upstream.ErrNotConfigured.
func newClient() *upstream.Client {
	timeout := 10 * time.Second
	if cfg, err := config.Load(); err == nil {
		if d, err := time.ParseDuration(cfg.API.Timeout); err == nil && d > 0 {
			timeout = d
		}
	}
	return upstream.NewClient(serverURL(), upstream.Options{Timeout: timeout, Logger: logger.GetLogger()})
}

// currentSession returns the stored principal or an error asking to sign in.
func currentSession() (*models.SessionUser, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("%w (run: revelare init)", err)
	}
	s := cfg.Session()
	if !s.IsAuthenticated() {
		return nil, errors.New("not signed in (run: revelare auth signin)")
	}
	return s, nil
}

func requireAdmin() (*models.SessionUser, error) {
	s, err := currentSession()
	if err != nil {
		return nil, err
	}
	if !s.IsAdmin() {
		return nil, errors.New("the dashboard requires an admin account")
	}
	return s, nil
}

// explain turns API errors into CLI errors. An unauthorized answer ends
// the stored session.
func explain(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, upstream.ErrUnauthorized) {
		if cerr := config.ClearUserToken(); cerr != nil {
			logger.Warn("clear_token_failed", "error", cerr.Error())
		}
		return errors.New("session expired, sign in again (run: revelare auth signin)")
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return errors.New(verr.Message)
	}
	return err
}

// confirm asks a yes/no question unless --yes was given.
func confirm(cmd *cobra.Command, question string) bool {
	if assumeYes {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
