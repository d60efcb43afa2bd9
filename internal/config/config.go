// Package config loads vecfs's configuration from a YAML file plus
// environment overrides, using viper so the precedence rules match the
// rest of the ecosystem: env vars beat the config file, which beats
// these defaults. No CLI flag is bound into this configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds everything vecfs acts on: where the log lives, how to
// reach an embedder, and the ambient server/search/logging knobs.
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Embedder EmbedderConfig `mapstructure:"embedder"`
	Search   SearchConfig   `mapstructure:"search"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	API      APIConfig      `mapstructure:"api"`
}

// StorageConfig names the on-disk log. It is the one field spec.md §6.3
// requires the core to act on.
type StorageConfig struct {
	File string `mapstructure:"file"`
}

// EmbedderConfig is forwarded opaquely to the Embedder Port factory;
// the core itself only ever calls Embed, never reads these fields.
type EmbedderConfig struct {
	Provider  string  `mapstructure:"provider"` // "ollama" | "openai" | "none"
	BaseURL   string  `mapstructure:"base_url"`
	APIKey    string  `mapstructure:"api_key"`
	Model     string  `mapstructure:"model"`
	Threshold float64 `mapstructure:"threshold"`
	Normalise bool    `mapstructure:"normalise"`
}

// String masks APIKey so configs can be logged safely.
func (c EmbedderConfig) String() string {
	return fmt.Sprintf("EmbedderConfig{Provider:%s, BaseURL:%s, APIKey:%s, Model:%s, Threshold:%v, Normalise:%v}",
		c.Provider, c.BaseURL, maskAPIKey(c.APIKey), c.Model, c.Threshold, c.Normalise)
}

func maskAPIKey(key string) string {
	const visible = 4
	if len(key) <= visible*2 {
		return "***"
	}
	return key[:visible] + "****" + key[len(key)-visible:]
}

// SearchConfig controls Search's default limit and the reinforcement
// boost weight; both have spec-mandated defaults (5 and 0.10) that
// implementers may expose as tunables without changing the contract.
type SearchConfig struct {
	DefaultLimit   int     `mapstructure:"default_limit"`
	FeedbackWeight float64 `mapstructure:"feedback_weight"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// APIConfig governs the optional HTTP transport; empty AuthToken
// disables bearer-token auth.
type APIConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	AuthToken  string `mapstructure:"auth_token"`
}

// Load reads configuration from ~/.vecfs/config.yaml or ./config.yaml,
// layering environment overrides on top. A missing config file is not
// an error — defaults plus environment variables are enough to run.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("storage.file", "./vecfs-data.jsonl")

	v.SetDefault("embedder.provider", "none")
	v.SetDefault("embedder.base_url", "http://localhost:11434")
	v.SetDefault("embedder.model", "nomic-embed-text")
	v.SetDefault("embedder.threshold", 0.01)
	v.SetDefault("embedder.normalise", true)

	v.SetDefault("search.default_limit", 5)
	v.SetDefault("search.feedback_weight", 0.10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("api.listen_addr", ":8089")
	v.SetDefault("api.auth_token", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(homeDir(), ".vecfs"))
	v.AddConfigPath(".")

	v.SetEnvPrefix("VECFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// spec.md §6.3 names VECFS_FILE specifically, which AutomaticEnv
	// would not derive from the mapstructure path (it derives
	// VECFS_STORAGE_FILE), so it is bound explicitly as well.
	_ = v.BindEnv("storage.file", "VECFS_FILE")
	_ = v.BindEnv("embedder.provider", "VECFS_EMBEDDER_PROVIDER")
	_ = v.BindEnv("embedder.api_key", "VECFS_EMBEDDER_API_KEY")
	_ = v.BindEnv("embedder.base_url", "VECFS_EMBEDDER_BASE_URL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("vecfs: reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("vecfs: unmarshalling config: %w", err)
	}

	return &cfg, nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
