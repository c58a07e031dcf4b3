// Package config loads the runtime configuration from the
// environment.
package config

import (
	"github.com/spf13/viper"
)

// Config holds all settings of the backend.
type Config struct {
	Port             string `mapstructure:"PORT"`
	DatabaseDSN      string `mapstructure:"DB_DSN"`
	GinMode          string `mapstructure:"GIN_MODE"`
	LogFormat        string `mapstructure:"LOG_FORMAT"`
	CORSAllowOrigins string `mapstructure:"CORS_ALLOW_ORIGINS"`
	EnablePprof      bool   `mapstructure:"ENABLE_PPROF"`
}

// Load reads the configuration from the environment, falling back
// to defaults suitable for local development.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DSN", "data/gorm.db?_pragma=foreign_keys(1)")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_FORMAT", "")
	v.SetDefault("CORS_ALLOW_ORIGINS", "")
	v.SetDefault("ENABLE_PPROF", false)

	v.AutomaticEnv()

	var config Config
	err := v.Unmarshal(&config)
	if err != nil {
		return Config{}, err
	}

	return config, nil
}
