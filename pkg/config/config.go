/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config loads application configuration from an appconfig.yaml
// file with CONFCACHE_-prefixed environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/blip0/confcache/pkg/cache/redis"
)

// AppConfig is the full application configuration.
type AppConfig struct {
	App      App          `mapstructure:"app"`
	Redis    redis.Config `mapstructure:"redis"`
	Consumer Consumer     `mapstructure:"consumer"`
}

// App holds process-level settings.
type App struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"loglevel"`
}

// Consumer configures the change-event consumer binary.
type Consumer struct {
	// Tenants lists tenant ids whose tenant-specific channels the
	// consumer subscribes to, in addition to the platform and config
	// channels.
	Tenants []string `mapstructure:"tenants"`
}

// Load reads appconfig.yaml from the given directory and applies
// environment overrides (e.g. CONFCACHE_REDIS_HOST).
func Load(configDir string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("appconfig")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("CONFCACHE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.name", "confcache")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.loglevel", "info")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Missing file is fine, defaults and env vars apply.
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
