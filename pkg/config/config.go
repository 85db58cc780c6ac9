package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Calendar CalendarConfig
	Session  SessionConfig
	NATS     NATSConfig
	Email    EmailConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// CalendarConfig points at the external webhook-based calendar backend.
// BaseURL is a config seam so tests and deployments can substitute
// endpoints.
type CalendarConfig struct {
	BaseURL  string
	Timeout  time.Duration
	Timezone string
}

type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

type NATSConfig struct {
	URL string
}

// EmailConfig selects the outgoing mail provider. Provider is one of
// "dev" (log only), "smtp" (Mailpit or a staging relay) or "mailersend".
type EmailConfig struct {
	Provider      string
	MailerSendKey string
	FromName      string
	FromEmail     string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Calendar: CalendarConfig{
			BaseURL:  getEnv("CALENDAR_BASE_URL", "https://n8n.nex-gen.digital"),
			Timeout:  getDuration("CALENDAR_TIMEOUT", 10*time.Second),
			Timezone: getEnv("CALENDAR_TIMEZONE", "America/New_York"),
		},
		Session: SessionConfig{
			TTL:           getDuration("SESSION_TTL", 30*time.Minute),
			SweepInterval: getDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", ""),
		},
		Email: EmailConfig{
			Provider:      getEnv("EMAIL_PROVIDER", "dev"),
			MailerSendKey: getEnv("MAILERSEND_API_KEY", ""),
			FromName:      getEnv("EMAIL_FROM_NAME", "Agenda"),
			FromEmail:     getEnv("EMAIL_FROM", "citas@nex-gen.digital"),
			SMTPHost:      getEnv("SMTP_HOST", "localhost"),
			SMTPPort:      getInt("SMTP_PORT", 1025),
			SMTPUser:      getEnv("SMTP_USER", ""),
			SMTPPass:      getEnv("SMTP_PASS", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
