package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/revelare/revelare-web/pkg/models"
	"gopkg.in/yaml.v3"
)

// ErrNotInitialized is returned when no config file exists yet.
var ErrNotInitialized = errors.New("configuration not initialized")

type Config struct {
	API struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`
	User struct {
		ID    string `yaml:"id"`
		Name  string `yaml:"name"`
		Email string `yaml:"email"`
		Role  string `yaml:"role"`
		Token string `yaml:"token"`
	} `yaml:"user"`
	Search struct {
		Scenario string `yaml:"scenario"`
		Debounce string `yaml:"debounce"`
	} `yaml:"search"`
	Logging struct {
		Level string `yaml:"level"`
		Path  string `yaml:"path"`
	} `yaml:"logging"`
}

// GetConfigDir is ~/.revelare unless REVELARE_HOME is set.
func GetConfigDir() (string, error) {
	if dir := os.Getenv("REVELARE_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".revelare"), nil
}

func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// Save writes the file owner-only: it holds the access token.
func Save(config *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Init writes a default config pointing at apiURL.
func Init(apiURL string) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	logsDir := filepath.Join(configDir, "logs")
	if err := os.MkdirAll(logsDir, 0o700); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	config := &Config{}
	config.API.BaseURL = strings.TrimRight(apiURL, "/")
	config.API.Timeout = "10s"
	config.Search.Scenario = ""
	config.Search.Debounce = "500ms"
	config.Logging.Level = "warn"
	config.Logging.Path = logsDir

	return Save(config)
}

// UpdateUserSession stores the signed-in principal and its access token.
func UpdateUserSession(u models.SessionUser) error {
	config, err := Load()
	if err != nil {
		return err
	}

	config.User.ID = u.ID
	config.User.Name = u.Name
	config.User.Email = u.Email
	config.User.Role = u.Role
	config.User.Token = u.AccessToken

	return Save(config)
}

func ClearUserToken() error {
	config, err := Load()
	if err != nil {
		return err
	}

	config.User.ID = ""
	config.User.Name = ""
	config.User.Email = ""
	config.User.Role = ""
	config.User.Token = ""

	return Save(config)
}

// Session returns the stored principal, or nil when signed out.
func (c *Config) Session() *models.SessionUser {
	if c == nil || c.User.Token == "" {
		return nil
	}
	return &models.SessionUser{
		ID:          c.User.ID,
		Name:        c.User.Name,
		Email:       c.User.Email,
		Role:        c.User.Role,
		AccessToken: c.User.Token,
	}
}

// GetServerURL is the API base URL. REVELARE_API_URL overrides the file.
// An empty result means the API is not configured.
func GetServerURL() (string, error) {
	if env := strings.TrimSpace(os.Getenv("REVELARE_API_URL")); env != "" {
		return strings.TrimRight(env, "/"), nil
	}
	config, err := Load()
	if err != nil {
		return "", err
	}
	return config.API.BaseURL, nil
}
