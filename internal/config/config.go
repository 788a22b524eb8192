package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig `yaml:"server"`
	AWS    AWSConfig    `yaml:"aws"`
	JWT    JWTConfig    `yaml:"jwt"`
	Log    LogConfig    `yaml:"log"`
	APNs   APNsConfig   `yaml:"apns"`
	NATS   NATSConfig   `yaml:"nats"`
	Limits LimitsConfig `yaml:"limits"`
	Seed   bool         `yaml:"seed"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	Host            string        `yaml:"host"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// AWSConfig holds the avatar bucket settings. An empty bucket disables uploads.
type AWSConfig struct {
	Region    string `yaml:"region"`
	S3Bucket  string `yaml:"s3_bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"`
}

// JWTConfig holds JWT configuration. An empty secret trusts the X-User-ID header instead.
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// APNsConfig holds push notification settings
type APNsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	KeyFile    string `yaml:"key_file"`
	KeyID      string `yaml:"key_id"`
	TeamID     string `yaml:"team_id"`
	Topic      string `yaml:"topic"`
	Production bool   `yaml:"production"`
}

// NATSConfig holds the match event stream settings
type NATSConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// LimitsConfig bounds user-supplied text and chat pages
type LimitsConfig struct {
	TitleMax         int `yaml:"title_max"`
	DescriptionMax   int `yaml:"description_max"`
	BioMax           int `yaml:"bio_max"`
	MessageMax       int `yaml:"message_max"`
	ChatDefaultLimit int `yaml:"chat_default_limit"`
	ChatMaxLimit     int `yaml:"chat_max_limit"`
}

// Load reads configuration from a YAML file, then applies .env and environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		AWS:  AWSConfig{Region: "us-east-1"},
		Log:  LogConfig{Level: "info"},
		NATS: NATSConfig{URL: "nats://127.0.0.1:4222", SubjectPrefix: "collab"},
		Limits: LimitsConfig{
			TitleMax:         100,
			DescriptionMax:   500,
			BioMax:           200,
			MessageMax:       2000,
			ChatDefaultLimit: 50,
			ChatMaxLimit:     200,
		},
	}
}

// Validate checks settings that would otherwise fail late
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.APNs.Enabled && (c.APNs.KeyFile == "" || c.APNs.KeyID == "" || c.APNs.TeamID == "" || c.APNs.Topic == "") {
		return errors.New("apns is enabled but key_file, key_id, team_id and topic are not all set")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		return errors.New("nats is enabled but url is empty")
	}
	if c.Limits.ChatMaxLimit > 0 && c.Limits.ChatMaxLimit < c.Limits.ChatDefaultLimit {
		return fmt.Errorf("chat_max_limit %d is below chat_default_limit %d", c.Limits.ChatMaxLimit, c.Limits.ChatDefaultLimit)
	}
	return nil
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (c *Config) applyEnv() {
	c.Server.Host = getString("SERVER_HOST", c.Server.Host)
	c.Server.Port = getInt("SERVER_PORT", c.Server.Port)
	c.Server.ShutdownTimeout = getDuration("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = splitList(origins)
	}

	c.Log.Level = getString("LOG_LEVEL", c.Log.Level)
	c.JWT.Secret = getString("JWT_SECRET", c.JWT.Secret)

	c.AWS.Region = getString("AWS_REGION", c.AWS.Region)
	c.AWS.S3Bucket = getString("AWS_S3_BUCKET", c.AWS.S3Bucket)
	c.AWS.AccessKey = getString("AWS_ACCESS_KEY_ID", c.AWS.AccessKey)
	c.AWS.SecretKey = getString("AWS_SECRET_ACCESS_KEY", c.AWS.SecretKey)
	c.AWS.Endpoint = getString("AWS_S3_ENDPOINT", c.AWS.Endpoint)

	c.APNs.Enabled = getBool("APNS_ENABLED", c.APNs.Enabled)
	c.APNs.KeyFile = getString("APNS_KEY_FILE", c.APNs.KeyFile)
	c.APNs.KeyID = getString("APNS_KEY_ID", c.APNs.KeyID)
	c.APNs.TeamID = getString("APNS_TEAM_ID", c.APNs.TeamID)
	c.APNs.Topic = getString("APNS_TOPIC", c.APNs.Topic)
	c.APNs.Production = getBool("APNS_PRODUCTION", c.APNs.Production)

	c.NATS.Enabled = getBool("NATS_ENABLED", c.NATS.Enabled)
	c.NATS.URL = getString("NATS_URL", c.NATS.URL)
	c.NATS.SubjectPrefix = getString("NATS_SUBJECT_PREFIX", c.NATS.SubjectPrefix)

	c.Seed = getBool("SEED_SAMPLE_DATA", c.Seed)
}

func getString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
