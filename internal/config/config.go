// Package config loads mtlrelink settings.
//
// Values are layered, lowest to highest priority: built-in defaults, an
// optional YAML file, MTLRELINK_ environment variables, and command-line flags
// that were explicitly set.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	// DefaultRoot is the tree relinked when nothing else is configured
	DefaultRoot = "assets/korok_1"
	// DefaultTarget is the shared material library every mesh is pointed at
	DefaultTarget = "../../korok_texture_lib.mtl"
	// DefaultFile is looked up in the working directory when --config is not given
	DefaultFile = "mtlrelink.yaml"

	envPrefix = "MTLRELINK_"
)

// Config holds the settings of one run
type Config struct {
	Root     string `koanf:"root"`
	Target   string `koanf:"target"`
	Cleanup  bool   `koanf:"cleanup"`
	LogLevel string `koanf:"log_level"`

	// File is the config file that was read, empty if none
	File string `koanf:"-"`
}

// Load builds a Config. cfgFile may be empty; flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"root":      DefaultRoot,
		"target":    DefaultTarget,
		"cleanup":   false,
		"log_level": "info",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// MTLRELINK_LOG_LEVEL -> log_level
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findConfigFile picks the explicit path, or DefaultFile if it exists
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile
	}
	return ""
}

// Validate checks that the settings describe a runnable relink
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Root) == "" {
		errs = append(errs, errors.New("root directory is required"))
	}
	if strings.TrimSpace(c.Target) == "" {
		errs = append(errs, errors.New("target material library is required"))
	}
	if strings.ContainsAny(c.Target, " \t\r\n") {
		errs = append(errs, fmt.Errorf("target %q must be a single token", c.Target))
	}
	return errors.Join(errs...)
}
