package cli

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/revelare/revelare-web/cli/config"
	"github.com/revelare/revelare-web/pkg/models"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify the revelare CLI configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("%w (run: revelare init)", err)
		}
		out := cmd.OutOrStdout()
		path, _ := config.GetConfigPath()
		fmt.Fprintln(out, titleStyle.Render("Configuration"))
		fmt.Fprintln(out, mutedStyle.Render(path))
		fmt.Fprintln(out)

		v := reflect.ValueOf(*cfg)
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			field := v.Field(i)
			section := t.Field(i).Tag.Get("yaml")
			fmt.Fprintf(out, "[%s]\n", section)
			for j := 0; j < field.NumField(); j++ {
				tag := field.Type().Field(j).Tag.Get("yaml")
				val := fmt.Sprint(field.Field(j).Interface())
				if section == "user" && tag == "token" && val != "" {
					val = "********"
				}
				fmt.Fprintf(out, "  %s: %s\n", tag, val)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Keys: api.base_url, api.timeout,
search.scenario, search.debounce, logging.level.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("%w (run: revelare init)", err)
		}
		key, value := strings.ToLower(args[0]), strings.TrimSpace(args[1])
		if err := setConfigValue(cfg, key, value); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s = %s", key, value))
		return nil
	},
}

func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "api.base_url":
		cfg.API.BaseURL = strings.TrimRight(value, "/")
	case "api.timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for api.timeout: %q", value)
		}
		cfg.API.Timeout = value
	case "search.scenario":
		if value != "" && models.ParseScenario(value) == models.ScenarioDefault {
			return fmt.Errorf("unknown scenario %q (use 3, 5, 10, 0 or -1)", value)
		}
		cfg.Search.Scenario = value
	case "search.debounce":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for search.debounce: %q", value)
		}
		cfg.Search.Debounce = value
	case "logging.level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
			cfg.Logging.Level = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid log level %q", value)
		}
	default:
		return fmt.Errorf("unknown configuration key %q", key)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
