package cli

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/revelare/revelare-web/cli/config"
	"github.com/spf13/cobra"
)

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "System information",
	Long:  `Display system information and diagnostics.`,
}

var systemInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show system info",
	Long:  `Display the platform, the configuration in use and whether the API answers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render("System"))
		fmt.Fprintf(out, "  Version: %s\n", rootCmd.Version)
		fmt.Fprintf(out, "  OS: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "  Go: %s\n", runtime.Version())

		fmt.Fprintln(out)
		fmt.Fprintln(out, titleStyle.Render("Configuration"))
		if cfg, err := config.Load(); err != nil {
			fmt.Fprintln(out, "  Not initialized (run: revelare init)")
		} else {
			path, _ := config.GetConfigPath()
			fmt.Fprintf(out, "  File: %s\n", path)
			fmt.Fprintf(out, "  Signed in: %t\n", cfg.Session().IsAuthenticated())
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, titleStyle.Render("API"))
		base := serverURL()
		if base == "" {
			fmt.Fprintln(out, "  Status: not configured")
			return nil
		}
		fmt.Fprintf(out, "  URL: %s\n", base)
		client := http.Client{Timeout: 3 * time.Second}
		resp, err := client.Get(base + "/")
		if err != nil {
			fmt.Fprintf(out, "  Status: ✗ Unreachable (%s)\n", err.Error())
			return nil
		}
		resp.Body.Close()
		if resp.StatusCode < 500 {
			fmt.Fprintf(out, "  Status: ✓ Online (HTTP %d)\n", resp.StatusCode)
		} else {
			fmt.Fprintf(out, "  Status: ⚠ Issues (HTTP %d)\n", resp.StatusCode)
		}
		return nil
	},
}

func init() {
	systemCmd.AddCommand(systemInfoCmd)
}
