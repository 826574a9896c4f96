// Package clicfg loads codelens.yaml (or .codelens.yaml) through viper,
// the configuration-file layer cmd/codelens's subcommands share so a
// project can pin its walk globs, store path, and server defaults once
// instead of repeating flags on every invocation.
package clicfg

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/solanumlabs/codelens/pkg/types"
)

// Config is the on-disk project configuration, unmarshaled by viper.
type Config struct {
	StorePath   string           `mapstructure:"store_path"`
	Walk        types.WalkConfig `mapstructure:"walk"`
	SizeCeiling int              `mapstructure:"size_ceiling"`
	Workers     int              `mapstructure:"workers"`
	MetricsAddr string           `mapstructure:"metrics_addr"`
}

// Default returns the configuration used when no config file is present.
func Default() Config {
	return Config{
		StorePath:   ".codelens/codelens.db",
		Walk:        types.DefaultWalkConfig(),
		SizeCeiling: 2 * 1024 * 1024,
		Workers:     4,
	}
}

// Load reads configFile (if non-empty) or searches root for
// codelens.yaml/.codelens.yaml, merging found values over Default().
// A missing config file is not an error — every project works with
// zero configuration.
func Load(root, configFile string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("CODELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("codelens")
		v.SetConfigType("yaml")
		v.AddConfigPath(root)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, err
		}
		dotFile := filepath.Join(root, ".codelens.yaml")
		if _, statErr := os.Stat(dotFile); statErr != nil {
			return cfg, nil
		}
		v.SetConfigFile(dotFile)
		if err := v.ReadInConfig(); err != nil {
			return cfg, err
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
