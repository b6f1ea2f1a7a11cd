package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"fjacquet/finsort/internal/common"
	"fjacquet/finsort/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. FINSORT_LOG_LEVEL.
const EnvPrefix = "FINSORT"

// Config represents the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Server struct {
		Address         string   `mapstructure:"address" yaml:"address"`
		AllowedOrigins  []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
		ShutdownSeconds int      `mapstructure:"shutdown_seconds" yaml:"shutdown_seconds"`
	} `mapstructure:"server" yaml:"server"`

	API struct {
		BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		Retry          struct {
			MaxAttempts  int           `mapstructure:"max_attempts" yaml:"max_attempts"`
			InitialDelay time.Duration `mapstructure:"initial_delay" yaml:"initial_delay"`
			MaxDelay     time.Duration `mapstructure:"max_delay" yaml:"max_delay"`
		} `mapstructure:"retry" yaml:"retry"`
	} `mapstructure:"api" yaml:"api"`

	Taxonomy struct {
		ExpenseFile string `mapstructure:"expense_file" yaml:"expense_file"`
		IncomeFile  string `mapstructure:"income_file" yaml:"income_file"`
	} `mapstructure:"taxonomy" yaml:"taxonomy"`
}

// InitializeConfig loads the configuration from the default locations.
func InitializeConfig() (*Config, error) {
	return LoadConfig("")
}

// LoadConfig merges defaults, the config file and FINSORT_* environment
// variables. An empty configFile searches $HOME/.finsort, .finsort and the
// working directory for config.yaml; a missing file is not an error.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.finsort")
		v.AddConfigPath(".finsort")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// LOG_LEVEL is honoured without the prefix, like the .env files do.
	if err := v.BindEnv("log.level", EnvPrefix+"_LOG_LEVEL", "LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind log level: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.shutdown_seconds", 10)

	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout_seconds", 10)
	v.SetDefault("api.retry.max_attempts", 3)
	v.SetDefault("api.retry.initial_delay", "200ms")
	v.SetDefault("api.retry.max_delay", "5s")

	v.SetDefault("taxonomy.expense_file", "expense_classification.yaml")
	v.SetDefault("taxonomy.income_file", "income_classification.yaml")
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if strings.TrimSpace(config.Server.Address) == "" {
		return fmt.Errorf("server.address must not be empty")
	}

	u, err := url.Parse(config.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got: %s", config.API.BaseURL)
	}

	if config.API.TimeoutSeconds < 1 || config.API.TimeoutSeconds > 300 {
		return fmt.Errorf("api.timeout_seconds must be between 1 and 300, got: %d", config.API.TimeoutSeconds)
	}

	if config.API.Retry.MaxAttempts < 1 || config.API.Retry.MaxAttempts > 10 {
		return fmt.Errorf("api.retry.max_attempts must be between 1 and 10, got: %d", config.API.Retry.MaxAttempts)
	}

	if config.API.Retry.InitialDelay > config.API.Retry.MaxDelay {
		return fmt.Errorf("api.retry.initial_delay (%s) exceeds api.retry.max_delay (%s)",
			config.API.Retry.InitialDelay, config.API.Retry.MaxDelay)
	}

	if config.Taxonomy.ExpenseFile == "" || config.Taxonomy.IncomeFile == "" {
		return fmt.Errorf("taxonomy.expense_file and taxonomy.income_file are required")
	}

	return nil
}

// Timeout returns the per-request timeout of the REST client.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// RetryOptions returns the REST client's backoff settings.
func (c *Config) RetryOptions() common.RetryOptions {
	opts := common.DefaultRetryOptions()
	opts.MaxAttempts = c.API.Retry.MaxAttempts
	opts.InitialDelay = c.API.Retry.InitialDelay
	opts.MaxDelay = c.API.Retry.MaxDelay
	return opts
}

// ShutdownTimeout bounds graceful server shutdown.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownSeconds) * time.Second
}

// NewLogger builds the process logger from the log section.
func (c *Config) NewLogger() logging.Logger {
	return logging.NewLogrusAdapter(c.Log.Level, c.Log.Format)
}
