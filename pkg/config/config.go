package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Timetable source kinds.
const (
	TimetableSourceFile     = "file"
	TimetableSourcePostgres = "postgres"
)

type Config struct {
	Env  string
	Port int

	Timetable TimetableConfig
	Notify    NotifyConfig
	Database  DatabaseConfig
	Log       LogConfig
}

// TimetableConfig selects and locates the weekly schedule source.
type TimetableConfig struct {
	Source string
	Path   string
}

// NotifyConfig carries the domain knobs of the notification loop.
type NotifyConfig struct {
	WebhookURL      string
	NoticeWindow    time.Duration
	MissedThreshold time.Duration
	ResetHour       int
	CallTimeout     time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Timetable = TimetableConfig{
		Source: strings.ToLower(v.GetString("TIMETABLE_SOURCE")),
		Path:   v.GetString("TIMETABLE_PATH"),
	}

	cfg.Notify = NotifyConfig{
		WebhookURL:      v.GetString("DISCORD_WEBHOOK_URL"),
		NoticeWindow:    parseDuration(v.GetString("NOTICE_WINDOW"), 15*time.Minute),
		MissedThreshold: parseDuration(v.GetString("MISSED_THRESHOLD"), 15*time.Minute),
		ResetHour:       v.GetInt("RESET_HOUR"),
		CallTimeout:     parseDuration(v.GetString("WEBHOOK_CALL_TIMEOUT"), 10*time.Second),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("TIMETABLE_SOURCE", TimetableSourceFile)
	v.SetDefault("TIMETABLE_PATH", "weekly.json")

	v.SetDefault("DISCORD_WEBHOOK_URL", "")
	v.SetDefault("NOTICE_WINDOW", "15m")
	v.SetDefault("MISSED_THRESHOLD", "15m")
	v.SetDefault("RESET_HOUR", 2)
	v.SetDefault("WEBHOOK_CALL_TIMEOUT", "10s")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "classbell")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
