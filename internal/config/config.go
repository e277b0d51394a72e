package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultPath = "config/config.yaml"

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
}

// Enabled reports whether welcome mails should be sent at all.
func (e EmailConfig) Enabled() bool {
	return e.SMTPHost != ""
}

type ExportConfig struct {
	// TTF с кириллицей; пусто = Helvetica
	FontPath string `yaml:"font_path"`
}

type Config struct {
	Server   ServerConfig `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Auth   AuthConfig   `yaml:"auth"`
	Email  EmailConfig  `yaml:"email"`
	Export ExportConfig `yaml:"export"`
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Server.Port = 5000
	cfg.Server.ShutdownTimeout = 10 * time.Second
	cfg.Auth.JWTSecret = "dev-secret-change-me"
	cfg.Auth.TokenTTL = 30 * 24 * time.Hour
	cfg.Email.SMTPPort = 587
	return cfg
}

// LoadConfig reads the YAML file (QUICKTASK_CONFIG or config/config.yaml), then
// applies .env and environment overrides. A missing file is not an error.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	path := getEnv("QUICKTASK_CONFIG", defaultPath)
	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	cfg := defaults()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getIntEnv("PORT", cfg.Server.Port)
	// DATABASE_URL= (пусто) явно включает in-memory хранилище
	if dsn, ok := os.LookupEnv("DATABASE_URL"); ok {
		cfg.Database.DSN = dsn
	}
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.TokenTTL = getDurationEnv("JWT_TTL", cfg.Auth.TokenTTL)
	cfg.Email.SMTPHost = getEnv("SMTP_HOST", cfg.Email.SMTPHost)
	cfg.Email.SMTPPort = getIntEnv("SMTP_PORT", cfg.Email.SMTPPort)
	cfg.Email.SMTPUser = getEnv("SMTP_USER", cfg.Email.SMTPUser)
	cfg.Email.SMTPPassword = getEnv("SMTP_PASSWORD", cfg.Email.SMTPPassword)
	cfg.Email.FromEmail = getEnv("SMTP_FROM", cfg.Email.FromEmail)
	cfg.Export.FontPath = getEnv("PDF_FONT_PATH", cfg.Export.FontPath)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
