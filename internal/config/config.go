package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	SES      SESConfig      `yaml:"ses"`
	WhatsApp WhatsAppConfig `yaml:"whatsapp"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Gym      GymConfig      `yaml:"gym"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	DevMode        bool     `yaml:"dev_mode"`
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// AuthConfig holds bearer-token validation settings. Token issuance is
// handled by the identity provider; the API only verifies signatures
// and reads role claims.
type AuthConfig struct {
	Enabled   bool   `yaml:"enabled"`
	JWTSecret string `yaml:"jwt_secret"`
}

// SESConfig holds AWS SES credentials for the email channel
type SESConfig struct {
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	Region         string `yaml:"region"`
	FromEmail      string `yaml:"from_email"`
	FromName       string `yaml:"from_name"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// WhatsAppConfig holds WhatsApp Business Cloud API credentials.
// When Token or PhoneNumberID is empty the channel falls back to
// generating user-invocable deep links instead of sending directly.
type WhatsAppConfig struct {
	Token              string `yaml:"token"`
	PhoneNumberID      string `yaml:"phone_number_id"`
	DefaultCountryCode string `yaml:"default_country_code"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
}

// RedisConfig holds the optional template-cache Redis settings
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// StorageConfig holds S3 settings for file uploads
type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Bucket  string `yaml:"bucket"`
	Region  string `yaml:"region"`
	Prefix  string `yaml:"prefix"`
}

// JobsConfig holds scheduled-job settings. Hours are local server time.
type JobsConfig struct {
	Enabled            bool `yaml:"enabled"`
	ExpirySweepHour    int  `yaml:"expiry_sweep_hour"`
	AutoRenewHour      int  `yaml:"auto_renew_hour"`
	ExpiringNotifyHour int  `yaml:"expiring_notify_hour"`
	ExpiringWindowDays int  `yaml:"expiring_window_days"`
}

// GymConfig holds branding used in default notification copy
type GymConfig struct {
	Name string `yaml:"name"`
}

// Load reads configuration from a YAML file and applies defaults.
// A missing file is not an error; defaults plus env overrides are
// enough to run in development.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 5 * time.Minute
	}
	if cfg.SES.Region == "" {
		cfg.SES.Region = "us-east-1"
	}
	if cfg.SES.TimeoutSeconds == 0 {
		cfg.SES.TimeoutSeconds = 30
	}
	if cfg.WhatsApp.DefaultCountryCode == "" {
		cfg.WhatsApp.DefaultCountryCode = "54"
	}
	if cfg.WhatsApp.TimeoutSeconds == 0 {
		cfg.WhatsApp.TimeoutSeconds = 30
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Jobs.ExpirySweepHour == 0 {
		cfg.Jobs.ExpirySweepHour = 8
	}
	if cfg.Jobs.ExpiringNotifyHour == 0 {
		cfg.Jobs.ExpiringNotifyHour = 10
	}
	if cfg.Jobs.ExpiringWindowDays == 0 {
		cfg.Jobs.ExpiringWindowDays = 7
	}
	if cfg.Gym.Name == "" {
		cfg.Gym.Name = "Olimpo Gym"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// A .env file (if present) is loaded first so secrets can live there
// locally and in real env vars in deployment.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("DEV_MODE"); v == "true" {
		cfg.Server.DevMode = true
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
		cfg.Auth.Enabled = true
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.SES.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.SES.SecretKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.SES.Region = v
	}
	if v := os.Getenv("SES_FROM_EMAIL"); v != "" {
		cfg.SES.FromEmail = v
	}
	if v := os.Getenv("SES_FROM_NAME"); v != "" {
		cfg.SES.FromName = v
	}
	if v := os.Getenv("WHATSAPP_TOKEN"); v != "" {
		cfg.WhatsApp.Token = v
	}
	if v := os.Getenv("WHATSAPP_PHONE_NUMBER_ID"); v != "" {
		cfg.WhatsApp.PhoneNumberID = v
	}
	if v := os.Getenv("WHATSAPP_COUNTRY_CODE"); v != "" {
		cfg.WhatsApp.DefaultCountryCode = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("UPLOADS_S3_BUCKET"); v != "" {
		cfg.Storage.Bucket = v
		cfg.Storage.Enabled = true
	}
	if v := os.Getenv("UPLOADS_S3_REGION"); v != "" {
		cfg.Storage.Region = v
	}
	if v := os.Getenv("RUN_JOBS"); v == "true" {
		cfg.Jobs.Enabled = true
	}
	if v := os.Getenv("GYM_NAME"); v != "" {
		cfg.Gym.Name = v
	}

	return cfg, nil
}
