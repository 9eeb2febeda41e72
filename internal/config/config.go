// Package config provides hierarchical configuration loading for relayd.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the relay service.
type Config struct {
	Server    Server    `yaml:"server"`
	Logging   Logging   `yaml:"logging"`
	Telemetry Telemetry `yaml:"telemetry"`
	Breaker   Breaker   `yaml:"breaker"`
	SMS       SMS       `yaml:"sms"`
	Simple    Simple    `yaml:"simple"`
	Notion    Notion    `yaml:"notion"`
	Strava    Strava    `yaml:"strava"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port string `yaml:"port"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// Telemetry holds OpenTelemetry export configuration.
// An empty endpoint disables export entirely.
type Telemetry struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Breaker holds circuit breaker configuration for outbound clients.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// SMS holds Free Mobile SMS gateway credentials.
type SMS struct {
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
	URL  string `yaml:"url"`
}

// Simple holds the shared token for the generic trigger source.
type Simple struct {
	Token string `yaml:"token"`
}

// Notion holds notes API credentials.
type Notion struct {
	APIToken      string `yaml:"api_token"`
	WebhookSecret string `yaml:"webhook_secret"`
	BaseURL       string `yaml:"base_url"`
}

// Strava holds fitness API credentials and the OAuth token cache location.
type Strava struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	AccessToken  string `yaml:"access_token"`
	RefreshToken string `yaml:"refresh_token"`
	VerifyToken  string `yaml:"verify_token"`
	TokenFile    string `yaml:"token_file"`
	BaseURL      string `yaml:"base_url"`
	TokenURL     string `yaml:"token_url"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Server: Server{
			Port: "10000",
		},
		Logging: Logging{
			Level:   "info",
			Service: "relayd",
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		SMS: SMS{
			URL: "https://smsapi.free-mobile.fr/sendmsg",
		},
		Notion: Notion{
			BaseURL: "https://api.notion.com",
		},
		Strava: Strava{
			VerifyToken: "STRAVA",
			TokenFile:   "strava_tokens.json",
			BaseURL:     "https://www.strava.com/api/v3",
			TokenURL:    "https://www.strava.com/oauth/token",
		},
	}
}
