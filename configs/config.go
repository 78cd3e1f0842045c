package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Settings struct {
	Env  string `env:"APP_ENV" env-default:"local"`
	Port string `env:"PORT" env-default:"8080"`

	DatabaseDriver string `env:"DATABASE_DRIVER" env-default:"postgres"`
	DatabaseURL    string `env:"DATABASE_URL" env-required:"true"`

	JWTSecret string `env:"JWT_SECRET" env-required:"true"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	StatsCacheTTL time.Duration `env:"STATS_CACHE_TTL" env-default:"5m"`

	BrevoAPIKey     string `env:"BREVO_API_KEY"`
	EmailSender     string `env:"EMAIL_SENDER"`
	EmailSenderName string `env:"EMAIL_SENDER_NAME"`

	ReminderSchedule          string        `env:"REMINDER_CRON" env-default:"*/5 * * * *"`
	CompletionReminderAfter   time.Duration `env:"COMPLETION_REMINDER_AFTER" env-default:"1h"`
	ConfirmationReminderAfter time.Duration `env:"CONFIRMATION_REMINDER_AFTER" env-default:"24h"`

	DefaultTimeZone string `env:"DEFAULT_TIME_ZONE" env-default:"UTC"`
	LogTimeZone     string `env:"LOG_TIME_ZONE" env-default:"Africa/Nairobi"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Settings, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	var cfg Settings
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if cfg.DatabaseDriver != "postgres" && cfg.DatabaseDriver != "sqlite" {
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
	return &cfg, nil
}

func MustLoad() *Settings {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("🔥 Failed to load configuration: %v", err)
	}
	return cfg
}

// Location returns the zone used when a tutor has no usable time zone of their own.
func (s *Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.DefaultTimeZone)
	if err != nil {
		log.Printf("⚠️ Unknown DEFAULT_TIME_ZONE %q, using UTC", s.DefaultTimeZone)
		return time.UTC
	}
	return loc
}
