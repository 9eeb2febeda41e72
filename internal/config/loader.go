package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "relayd.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML file is optional; a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.Port, "RELAYD_PORT")
	setString(&cfg.Logging.Level, "RELAYD_LOG_LEVEL")
	setString(&cfg.Logging.Service, "RELAYD_LOG_SERVICE")
	setString(&cfg.Telemetry.OTLPEndpoint, "RELAYD_OTLP_ENDPOINT")
	setInt(&cfg.Breaker.MaxFailures, "RELAYD_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "RELAYD_BREAKER_TIMEOUT")

	// SMS gateway
	setString(&cfg.SMS.User, "FREE_ID")
	setString(&cfg.SMS.Pass, "FREE_SECRET")
	setString(&cfg.SMS.URL, "FREE_SMS_URL")

	// Generic trigger
	setString(&cfg.Simple.Token, "SIMPLE_TRIGGER_TOKEN")

	// Notion
	setString(&cfg.Notion.APIToken, "NOTION_API_TOKEN")
	setString(&cfg.Notion.WebhookSecret, "NOTION_WEBHOOK_SECRET")
	setString(&cfg.Notion.BaseURL, "NOTION_BASE_URL")

	// Strava
	setString(&cfg.Strava.ClientID, "STRAVA_CLIENT_ID")
	setString(&cfg.Strava.ClientSecret, "STRAVA_CLIENT_SECRET")
	setString(&cfg.Strava.AccessToken, "STRAVA_ACCESS_TOKEN")
	setString(&cfg.Strava.RefreshToken, "STRAVA_REFRESH_TOKEN")
	setString(&cfg.Strava.VerifyToken, "STRAVA_VERIFY_TOKEN")
	setString(&cfg.Strava.TokenFile, "STRAVA_TOKEN_FILE")
	setString(&cfg.Strava.BaseURL, "STRAVA_BASE_URL")
	setString(&cfg.Strava.TokenURL, "STRAVA_TOKEN_URL")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func setInputs(dst *map[string]any, key string) {
	if v := os.Getenv(key); v != "" {
		var m map[string]any
		if err := json.Unmarshal([]byte(v), &m); err == nil {
			*dst = m
		}
	}
}
