package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingAPIURL is returned when REVELARE_API_URL is not set.
var ErrMissingAPIURL = errors.New("missing required environment variable: REVELARE_API_URL")

type Upstream struct {
	BaseURL     string
	Timeout     time.Duration
	RPS         float64
	Burst       int
	BreakerFail int
	BreakerWait time.Duration
}

type Session struct {
	Secret       string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

type Google struct {
	ClientID     string
	ClientSecret string
}

func (g Google) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// Config is the web server configuration, read once at startup.
type Config struct {
	Port           string
	PublicURL      string
	DBPath         string
	LogLevel       string
	LogJSON        bool
	AllowedOrigins []string
	SearchDebounce time.Duration
	EnableGRPC     bool
	GRPCPort       string

	Upstream Upstream
	Session  Session
	Google   Google
}

// LoadDotEnv reads .env when present. A missing file is not an error.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// Load builds the configuration from the environment and fails fast when
// the API base URL is absent or malformed.
func Load() (*Config, error) {
	apiURL := strings.TrimRight(strings.TrimSpace(os.Getenv("REVELARE_API_URL")), "/")
	if apiURL == "" {
		return nil, ErrMissingAPIURL
	}
	if u, err := url.Parse(apiURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid REVELARE_API_URL %q", apiURL)
	}

	port := getEnv("PORT", "3000")
	cfg := &Config{
		Port:           port,
		PublicURL:      strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:"+port), "/"),
		DBPath:         getEnv("DB_PATH", "./data/revelare.db"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogJSON:        strings.EqualFold(getEnv("LOG_FORMAT", "text"), "json"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:"+port)),
		SearchDebounce: getEnvDuration("SEARCH_DEBOUNCE", 500*time.Millisecond),
		EnableGRPC:     getEnvBool("ENABLE_GRPC", false),
		GRPCPort:       getEnv("GRPC_PORT", "50051"),
		Upstream: Upstream{
			BaseURL:     apiURL,
			Timeout:     getEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second),
			RPS:         getEnvFloat("UPSTREAM_RPS", 20),
			Burst:       GetEnvInt("UPSTREAM_BURST", 40),
			BreakerFail: GetEnvInt("UPSTREAM_BREAKER_THRESHOLD", 5),
			BreakerWait: getEnvDuration("UPSTREAM_BREAKER_TIMEOUT", 30*time.Second),
		},
		Session: Session{
			Secret:       os.Getenv("SESSION_SECRET"),
			TTL:          getEnvDuration("SESSION_TTL", 24*time.Hour),
			CookieName:   getEnv("SESSION_COOKIE", "revelare_session"),
			CookieSecure: getEnvBool("COOKIE_SECURE", false),
		},
		Google: Google{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		},
	}

	if cfg.Session.Secret == "" {
		return nil, errors.New("missing required environment variable: SESSION_SECRET")
	}
	if len(cfg.Session.Secret) < 32 {
		return nil, errors.New("SESSION_SECRET must be at least 32 characters")
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func GetEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
