package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	FEC         FECConfig         `yaml:"fec" mapstructure:"fec"`
	Ballotpedia BallotpediaConfig `yaml:"ballotpedia" mapstructure:"ballotpedia"`
	Collect     CollectConfig     `yaml:"collect" mapstructure:"collect"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the Postgres backend.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// FECConfig configures the FEC filings collector.
type FECConfig struct {
	APIKey         string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	Cycle          int     `yaml:"cycle" mapstructure:"cycle"`
	PerPage        int     `yaml:"per_page" mapstructure:"per_page"`
	RequestDelayMS int     `yaml:"request_delay_ms" mapstructure:"request_delay_ms"`
	Confidence     float64 `yaml:"confidence" mapstructure:"confidence"`
}

// BallotpediaConfig configures the wiki collector.
type BallotpediaConfig struct {
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	RequestDelayMS int     `yaml:"request_delay_ms" mapstructure:"request_delay_ms"`
	Confidence     float64 `yaml:"confidence" mapstructure:"confidence"`
}

// CollectConfig configures the collection runner.
type CollectConfig struct {
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// RequestDelay converts the configured millisecond delay.
func (c FECConfig) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelayMS) * time.Millisecond
}

// RequestDelay converts the configured millisecond delay.
func (c BallotpediaConfig) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelayMS) * time.Millisecond
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CANDSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.max_conns", 8)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("collect.concurrency", 1)
	v.SetDefault("collect.user_agent", "candidate-sync/1.0")
	v.SetDefault("fec.base_url", "https://api.open.fec.gov/v1")
	v.SetDefault("fec.per_page", 100)
	v.SetDefault("fec.request_delay_ms", 500)
	v.SetDefault("fec.confidence", 0.9)
	v.SetDefault("ballotpedia.base_url", "https://ballotpedia.org")
	v.SetDefault("ballotpedia.request_delay_ms", 2000)
	v.SetDefault("ballotpedia.confidence", 0.6)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
