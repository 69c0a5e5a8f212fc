package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application. It is passed explicitly
// into each pipeline stage; there is no process-wide mutable state.
type Config struct {
	LogLevel    string   `mapstructure:"LOG_LEVEL"`
	DataDir     string   `mapstructure:"DATA_DIR"`
	MatchesDir  string   `mapstructure:"MATCHES_DIR"`
	VulViewsDir string   `mapstructure:"VUL_VIEWS_DIR"`
	GithubToken string   `mapstructure:"GITHUB_TOKEN"`
	SearchTerms []string `mapstructure:"SEARCH_TERMS"`
	HTTPAddr    string   `mapstructure:"HTTP_ADDR"`
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("MATCHES_DIR", "matches")
	viper.SetDefault("VUL_VIEWS_DIR", "vul_views")
	viper.SetDefault("HTTP_ADDR", ":8080")

	// Load from .env file if it exists
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate required fields. The GitHub token and search terms are only
	// needed by the search command, which checks for them itself.
	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is a required configuration field")
	}

	return &cfg, nil
}
