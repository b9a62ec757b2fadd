package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultAdminToken is the placeholder token shipped in example configs.
// The server refuses to start with it.
const DefaultAdminToken = "CHANGE_ME_IN_PRODUCTION"

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Data      DataConfig      `mapstructure:"data"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Session   SessionConfig   `mapstructure:"session"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Media     MediaConfig     `mapstructure:"media"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Port    string    `mapstructure:"port"`
	BaseURL string    `mapstructure:"baseURL"`
	TLS     TLSConfig `mapstructure:"tls"`
}

// TLSConfig holds TLS-specific configuration.
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // e.g., "debug", "info", "warn", "error"
	Format string `mapstructure:"format"` // e.g., "json", "console"
}

// DataConfig points at the directory holding the JSON collections.
type DataConfig struct {
	Dir   string `mapstructure:"dir"`
	Watch bool   `mapstructure:"watch"`
}

// CacheConfig holds in-memory cache configuration.
type CacheConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	MaxSize       int           `mapstructure:"maxSize"`
	CleanInterval time.Duration `mapstructure:"cleanInterval"`
}

// AuthConfig holds the shared admin secret.
type AuthConfig struct {
	AdminToken string `mapstructure:"adminToken"`
}

// SessionConfig holds admin session configuration.
type SessionConfig struct {
	Store    string `mapstructure:"store"` // "memory", "sqlite" or "mysql"
	DSN      string `mapstructure:"dsn"`
	Lifetime int    `mapstructure:"lifetime"` // hours
}

// GeneratorConfig holds defaults for the AI content generator. Values stored
// in the generator settings document take precedence.
type GeneratorConfig struct {
	APIKey       string `mapstructure:"apiKey"`
	Model        string `mapstructure:"model"`
	DelaySeconds int    `mapstructure:"delaySeconds"`
}

// MediaConfig selects where uploaded images are stored.
type MediaConfig struct {
	Backend   string   `mapstructure:"backend"` // "local" or "s3"
	Dir       string   `mapstructure:"dir"`
	URLPrefix string   `mapstructure:"urlPrefix"`
	S3        S3Config `mapstructure:"s3"`
}

// S3Config holds S3 (or S3-compatible) bucket settings.
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"accessKeyID"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
	PublicURL       string `mapstructure:"publicURL"`
}

// CORSConfig lists origins allowed to call the JSON API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// LoadConfig reads configuration from an optional .env file, a config file and
// environment variables. An empty path searches the default locations.
func LoadConfig(path string) (*Config, error) {
	// A missing .env file is the normal case in production.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/garage-site/")
		v.AddConfigPath("$HOME/.garage-site")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Config file was found but another error was produced
			return nil, err
		}
		// Config file not found; proceed with defaults and env vars
	}

	v.SetEnvPrefix("GARAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.baseURL", "http://localhost:8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("data.dir", "data")
	v.SetDefault("data.watch", true)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.maxSize", 100)
	v.SetDefault("cache.cleanInterval", 5*time.Minute)
	v.SetDefault("auth.adminToken", DefaultAdminToken)
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.dsn", "sessions.db")
	v.SetDefault("session.lifetime", 12)
	v.SetDefault("generator.model", "gemini-1.5-flash")
	v.SetDefault("generator.delaySeconds", 2)
	v.SetDefault("media.backend", "local")
	v.SetDefault("media.dir", "uploads")
	v.SetDefault("media.urlPrefix", "/media/")
	v.SetDefault("cors.allowedOrigins", []string{"*"})
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	token := strings.TrimSpace(c.Auth.AdminToken)
	if token == "" || token == DefaultAdminToken {
		return errors.New("auth.adminToken is not set; export GARAGE_AUTH_ADMINTOKEN")
	}
	if c.Data.Dir == "" {
		return errors.New("data.dir must not be empty")
	}
	return nil
}
