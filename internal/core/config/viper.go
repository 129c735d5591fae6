package config

import (
	"fmt"
	"strings"

	"github.com/fector/harvest/internal/types"
	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence; flags are
// applied by the caller after loading.
func LoadConfig(configPath string) (*HarvestConfig, error) {
	v := viper.New()

	// Set defaults matching DefaultHarvestConfig
	v.SetDefault("database_url", "")
	v.SetDefault("filter.strict", false)
	v.SetDefault("filter.max_depth", types.DefaultMaxDepth)
	v.SetDefault("query.default_limit", types.DefaultQueryLimit)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Bind environment variables with HARVEST_ prefix
	v.SetEnvPrefix("HARVEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Passwords must come from HARVEST_DATABASE_URL, not a file on disk
		if err := validateNoSecretsInConfig(configPath); err != nil {
			return nil, err
		}
	}

	cfg := &HarvestConfig{
		DatabaseURL:  v.GetString("database_url"),
		Strict:       v.GetBool("filter.strict"),
		MaxDepth:     v.GetInt("filter.max_depth"),
		DefaultLimit: v.GetInt("query.default_limit"),
		LogLevel:     v.GetString("log.level"),
		LogFormat:    v.GetString("log.format"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks limits are positive and logging settings are known.
func (c *HarvestConfig) Validate() error {
	if c.MaxDepth <= 0 {
		return fmt.Errorf("filter.max_depth must be positive, got %d", c.MaxDepth)
	}
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("query.default_limit must be positive, got %d", c.DefaultLimit)
	}
	if _, err := c.NewLogger(); err != nil {
		return err
	}
	return nil
}

// validateNoSecretsInConfig rejects a database password written in the file.
// The file is re-read without environment binding so HARVEST_DATABASE_URL
// cannot mask a secret stored on disk.
func validateNoSecretsInConfig(configPath string) error {
	fv := viper.New()
	fv.SetConfigFile(configPath)
	if err := fv.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if hasCredentials(fv.GetString("database_url")) {
		return fmt.Errorf("database passwords not allowed in config files (use HARVEST_DATABASE_URL environment variable)")
	}
	return nil
}
