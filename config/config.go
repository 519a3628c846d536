package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values. It is built once by Load and passed
// into constructors; nothing reads it through a package global.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Remote scheduling/commerce API.
	APIBaseURL string `mapstructure:"API_BASE_URL"`
	APIKey     string `mapstructure:"API_KEY"`

	// Host-platform bridge (generic action-dispatch endpoint).
	AjaxURL string `mapstructure:"AJAX_URL"`

	// Payment gateways.
	RazorpayKeyID     string `mapstructure:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret string `mapstructure:"RAZORPAY_KEY_SECRET"`
	PayPalClientID    string `mapstructure:"PAYPAL_CLIENT_ID"`
	PayPalSecret      string `mapstructure:"PAYPAL_SECRET"`
	PayPalLive        bool   `mapstructure:"PAYPAL_LIVE"`

	// Widget appearance and defaults.
	PrimaryColor       string `mapstructure:"PRIMARY_COLOR"`
	DefaultCountryCode string `mapstructure:"DEFAULT_COUNTRY_CODE"`
	// Fixed credential used only for the remote system's own password field.
	RemotePassword string `mapstructure:"REMOTE_PASSWORD"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	SessionTTLMinutes int    `mapstructure:"SESSION_TTL_MINUTES"`
	EmbedTokenSecret  string `mapstructure:"EMBED_TOKEN_SECRET"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
}

// SessionTTL returns the wizard session lifetime.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from config.yaml and the environment.
// It fails when the remote API key is missing: without it every call to the
// scheduling API would be rejected upstream.
func Load() (Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("AJAX_URL", "")
	viper.SetDefault("PRIMARY_COLOR", "#2563eb")
	viper.SetDefault("DEFAULT_COUNTRY_CODE", "+91")
	viper.SetDefault("REMOTE_PASSWORD", "xfit123")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("SESSION_TTL_MINUTES", 30)
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.APIKey == "" {
		return Config{}, fmt.Errorf("API key is not configured")
	}
	return cfg, nil
}
