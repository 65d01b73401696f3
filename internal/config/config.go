package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	DataDir   string          `mapstructure:"data_dir"`
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Synthesis SynthesisConfig `mapstructure:"synthesis"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"` // sqlite, postgres
	DSN    string `mapstructure:"dsn"`    // postgres only; sqlite lives in data_dir
}

type SynthesisConfig struct {
	Provider  string `mapstructure:"provider"` // anthropic, openai, openrouter, ollama
	Model     string `mapstructure:"model"`
	BaseURL   string `mapstructure:"base_url"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	defaultDataDir := filepath.Join(homeDir, ".urlingest")

	viper.SetDefault("data_dir", defaultDataDir)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("store.driver", "sqlite")
	viper.SetDefault("synthesis.provider", "anthropic")
	viper.SetDefault("synthesis.model", "claude-haiku-4-5-20251001")
	viper.SetDefault("synthesis.max_tokens", 1024)

	// Environment variable overrides
	viper.SetEnvPrefix("URLINGEST")
	viper.AutomaticEnv()
	viper.BindEnv("data_dir", "URLINGEST_DATA_DIR")
	viper.BindEnv("server.host", "URLINGEST_SERVER_HOST")
	viper.BindEnv("server.port", "URLINGEST_SERVER_PORT")
	viper.BindEnv("store.driver", "URLINGEST_STORE_DRIVER")
	viper.BindEnv("store.dsn", "URLINGEST_STORE_DSN")
	viper.BindEnv("synthesis.provider", "URLINGEST_SYNTHESIS_PROVIDER")
	viper.BindEnv("synthesis.model", "URLINGEST_SYNTHESIS_MODEL")
	viper.BindEnv("synthesis.base_url", "URLINGEST_SYNTHESIS_BASE_URL")

	// Config file
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultDataDir)

	// Read config file if exists (ignore error if not found)
	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "urlingest.db")
}
