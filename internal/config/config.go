package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/joho/godotenv"

	"github.com/alphapocket/pocket-backend/internal/model"
	"github.com/alphapocket/pocket-backend/internal/yahoo"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Quote    QuoteConfig
	Session  SessionConfig
	Events   EventsConfig
	Display  DisplayConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// QuoteConfig controls how quotes are fetched and cached.
type QuoteConfig struct {
	BaseURL       string
	Timeout       time.Duration
	CacheTTL      time.Duration
	NumericSuffix string
	Lookback      model.Lookback
}

// SessionConfig controls session tokens and housekeeping.
type SessionConfig struct {
	Key           *fernet.Key
	IdleTTL       time.Duration
	MaxSessions   int
	SweepSchedule string
}

// EventsConfig configures watchlist event publishing. No brokers means disabled.
type EventsConfig struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether a broker is configured.
func (e EventsConfig) Enabled() bool {
	return len(e.Brokers) > 0
}

// DisplayConfig holds presentation settings.
type DisplayConfig struct {
	BaseCurrency string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/pocket.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"http://localhost",
			}),
		},
		Quote: QuoteConfig{
			BaseURL:       getEnv("YAHOO_BASE_URL", yahoo.DefaultBaseURL),
			NumericSuffix: getEnv("QUOTE_NUMERIC_SUFFIX", yahoo.DefaultNumericSuffix),
			Lookback:      model.Lookback(getEnv("QUOTE_LOOKBACK", string(model.LookbackOneMonth))),
		},
		Session: SessionConfig{
			SweepSchedule: getEnv("SWEEP_SCHEDULE", "@every 5m"),
		},
		Events: EventsConfig{
			Brokers: getList("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "watchlist-events"),
		},
		Display: DisplayConfig{
			BaseCurrency: strings.ToUpper(getEnv("BASE_CURRENCY", "USD")),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	var err error
	if config.Quote.Timeout, err = getDuration("QUOTE_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if config.Quote.CacheTTL, err = getDuration("QUOTE_CACHE_TTL", 60*time.Second); err != nil {
		return nil, err
	}
	if config.Session.IdleTTL, err = getDuration("SESSION_IDLE_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	if config.Session.MaxSessions, err = getInt("SESSION_MAX", 10000); err != nil {
		return nil, err
	}
	if !config.Quote.Lookback.Valid() {
		return nil, fmt.Errorf("invalid QUOTE_LOOKBACK %q", config.Quote.Lookback)
	}
	if config.Session.Key, err = loadKey(os.Getenv("SESSION_KEY")); err != nil {
		return nil, err
	}

	return config, nil
}

// loadKey decodes a fernet key. An empty value generates a key that lives as
// long as the process, so every restart invalidates existing sessions.
func loadKey(encoded string) (*fernet.Key, error) {
	if encoded == "" {
		log.Println("SESSION_KEY not set, generating an ephemeral session key")
		var k fernet.Key
		if err := k.Generate(); err != nil {
			return nil, fmt.Errorf("failed to generate session key: %w", err)
		}
		return &k, nil
	}
	k, err := fernet.DecodeKey(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_KEY: %w", err)
	}
	return k, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getList splits a comma separated variable, dropping blank entries.
func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
