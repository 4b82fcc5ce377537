// Package config provides configuration for pinvirt. Values come from an
// optional config file, PINVIRT_* environment variables and defaults; the
// loaded struct is injected into the components that need it so nothing
// reads process-wide mutable state.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"pinvirt/internal/store"
	"pinvirt/internal/topology"
)

type Config struct {
	// StateFile is where the VM pinning map is persisted.
	StateFile string `mapstructure:"state_file"`

	// TopologyCommand enumerates the host CPUs in lscpu -p format.
	TopologyCommand string `mapstructure:"topology_command"`

	// LogLevel is a logrus level name.
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from configPath (optional; /etc/pinvirt is
// searched when empty) and the environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("state_file", store.DefaultPath)
	v.SetDefault("topology_command", topology.DefaultCommand)
	v.SetDefault("log_level", "warning")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/pinvirt")
	}

	v.SetEnvPrefix("PINVIRT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
