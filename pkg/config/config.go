package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	// AWS
	AWSRegion string

	// Twilio (WhatsApp messaging provider)
	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioWhatsAppNumber string

	// DynamoDB
	EventsTable   string
	SessionsTable string

	// S3 poster storage
	PostersBucket  string
	PostersBaseURL string

	// Public event pages
	FrontendURL string

	// Conversation policy
	SessionExpiryHours int

	// Environment
	Environment string
	LogLevel    string
	Port        string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		AWSRegion:            getEnv("AWS_REGION", "us-east-1"),
		TwilioAccountSID:     getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:      getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioWhatsAppNumber: getEnv("TWILIO_WHATSAPP_NUMBER", ""),
		EventsTable:          getEnv("EVENTS_TABLE", "events-bot-events"),
		SessionsTable:        getEnv("SESSIONS_TABLE", "events-bot-sessions"),
		PostersBucket:        getEnv("EVENT_POSTERS_BUCKET", ""),
		PostersBaseURL:       getEnv("EVENT_POSTERS_BASE_URL", ""),
		FrontendURL:          getEnv("FRONTEND_URL", ""),
		SessionExpiryHours:   getEnvInt("SESSION_EXPIRY_HOURS", 24),
		Environment:          getEnv("ENVIRONMENT", "dev"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		Port:                 getEnv("PORT", "8080"),
	}

	// Posters are served straight from the bucket unless fronted by a CDN
	if cfg.PostersBaseURL == "" && cfg.PostersBucket != "" {
		cfg.PostersBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.PostersBucket, cfg.AWSRegion)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present
func (c *Config) Validate() error {
	if c.EventsTable == "" {
		return fmt.Errorf("EVENTS_TABLE is required")
	}
	if c.SessionsTable == "" {
		return fmt.Errorf("SESSIONS_TABLE is required")
	}
	return nil
}

// ValidateWebhook checks webhook-handler-specific configuration
func (c *Config) ValidateWebhook() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.TwilioAccountSID == "" {
		return fmt.Errorf("TWILIO_ACCOUNT_SID is required for the webhook handler")
	}
	if c.TwilioAuthToken == "" {
		return fmt.Errorf("TWILIO_AUTH_TOKEN is required for the webhook handler")
	}
	if c.PostersBucket == "" {
		return fmt.Errorf("EVENT_POSTERS_BUCKET is required for the webhook handler")
	}
	return nil
}

// GetSessionExpiry returns the stale-session expiry window as a duration
func (c *Config) GetSessionExpiry() time.Duration {
	return time.Duration(c.SessionExpiryHours) * time.Hour
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
