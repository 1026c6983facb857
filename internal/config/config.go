package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration from environment (and optional .env).
type Config struct {
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	HTTPAddr        string        `mapstructure:"HTTP_ADDR"`
	DatabaseURL     string        `mapstructure:"DB_URL"`
	WebhookSecret   string        `mapstructure:"WEBHOOK_SECRET"`
	InsecureDevMode bool          `mapstructure:"INSECURE_DEV_MODE"`
	MainBranchRef   string        `mapstructure:"MAIN_BRANCH_REF"`
	GithubToken     string        `mapstructure:"GITHUB_TOKEN"`
	WorkerPoolSize  int           `mapstructure:"WORKER_POOL_SIZE"`
	QueueSize       int           `mapstructure:"QUEUE_SIZE"`
	MaxAttempts     int           `mapstructure:"MAX_ATTEMPTS"`
	RateLimitMax    int           `mapstructure:"RATE_LIMIT_MAX"`
	RateLimitWindow time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`
	AnalyzerURL     string        `mapstructure:"ANALYZER_URL"`
	AnalyzerTimeout time.Duration `mapstructure:"ANALYZER_TIMEOUT"`
}

// Load reads configuration from a .env file (if present) and the environment.
// It refuses to start without a webhook secret unless INSECURE_DEV_MODE is
// explicitly set: running with signature verification disabled must be a loud
// opt-in, never a fallback.
func Load() (*Config, error) {
	// Every key needs a default (even an empty one) so AutomaticEnv can
	// resolve values that come only from the environment.
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_URL", "")
	viper.SetDefault("WEBHOOK_SECRET", "")
	viper.SetDefault("GITHUB_TOKEN", "")
	viper.SetDefault("INSECURE_DEV_MODE", false)
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("MAIN_BRANCH_REF", "refs/heads/main")
	viper.SetDefault("WORKER_POOL_SIZE", 5)
	viper.SetDefault("QUEUE_SIZE", 1000)
	viper.SetDefault("MAX_ATTEMPTS", 3)
	viper.SetDefault("RATE_LIMIT_MAX", 10)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1s")
	viper.SetDefault("ANALYZER_URL", "http://localhost:8000")
	viper.SetDefault("ANALYZER_TIMEOUT", "30s")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // .env is optional

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DB_URL is a required configuration field")
	}
	if cfg.WebhookSecret == "" && !cfg.InsecureDevMode {
		return nil, errors.New("WEBHOOK_SECRET is required; set INSECURE_DEV_MODE=true to disable signature verification in local development only")
	}
	if cfg.WorkerPoolSize <= 0 {
		return nil, errors.New("WORKER_POOL_SIZE must be positive")
	}
	if cfg.QueueSize <= 0 {
		return nil, errors.New("QUEUE_SIZE must be positive")
	}
	if cfg.MaxAttempts <= 0 {
		return nil, errors.New("MAX_ATTEMPTS must be positive")
	}
	if cfg.RateLimitMax <= 0 || cfg.RateLimitWindow <= 0 {
		return nil, errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}

	return &cfg, nil
}
