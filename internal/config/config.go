// Package config loads front-end settings from flags, NMC_* environment
// variables and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"node-modules-cleaner/internal/deleter"
	"node-modules-cleaner/internal/report"
	"node-modules-cleaner/internal/scanner"
)

// EnvPrefix is prepended to every environment variable, e.g. NMC_MAX_DEPTH.
const EnvPrefix = "NMC"

// Keys shared by flags, environment and config file.
const (
	KeyMarker      = "marker"
	KeyConcurrency = "concurrency"
	KeyMaxDepth    = "max-depth"
	KeyExclude     = "exclude"
	KeyDryRun      = "dry-run"
	KeyOutput      = "output"
	KeyDebug       = "debug"
)

var keys = []string{KeyMarker, KeyConcurrency, KeyMaxDepth, KeyExclude, KeyDryRun, KeyOutput, KeyDebug}

// Config is the merged configuration. Precedence is flag, then environment,
// then config file, then defaults.
type Config struct {
	Marker      string   `mapstructure:"marker"`
	Concurrency int      `mapstructure:"concurrency"`
	MaxDepth    int      `mapstructure:"max-depth"`
	Excludes    []string `mapstructure:"exclude"`
	DryRun      bool     `mapstructure:"dry-run"`
	Output      string   `mapstructure:"output"`
	Debug       bool     `mapstructure:"debug"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyMarker, scanner.DefaultMarker)
	v.SetDefault(KeyConcurrency, 0)
	v.SetDefault(KeyMaxDepth, 0)
	v.SetDefault(KeyExclude, []string{})
	v.SetDefault(KeyDryRun, false)
	v.SetDefault(KeyOutput, string(report.FormatTable))
	v.SetDefault(KeyDebug, false)
}

// BindFlags binds every known key to the flag of the same name in flags.
// Keys without a flag are skipped.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, key := range keys {
		f := flags.Lookup(key)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %q: %w", key, err)
		}
	}
	return nil
}

// DefaultDir is the directory searched for config.yaml when no file is given.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "node-modules-cleaner"), nil
}

// Read wires environment lookup into v and reads the config file. An
// explicit file must exist; the default file is optional. It returns the
// file actually used, or "".
func Read(v *viper.Viper, file string) (string, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		dir, err := DefaultDir()
		if err != nil {
			return "", nil
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading config file: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values no command can work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Marker) == "" {
		return errors.New("marker must not be empty")
	}
	if strings.ContainsAny(c.Marker, `/\`) {
		return fmt.Errorf("marker %q must be a single directory name", c.Marker)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0, got %d", c.Concurrency)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max-depth must be >= 0, got %d", c.MaxDepth)
	}
	if _, err := report.ParseFormat(c.Output); err != nil {
		return err
	}
	return nil
}

// Format returns the validated output format.
func (c *Config) Format() report.Format {
	f, err := report.ParseFormat(c.Output)
	if err != nil {
		return report.FormatTable
	}
	return f
}

// ScanOptions maps the config onto scanner options.
func (c *Config) ScanOptions(log *zap.Logger) scanner.Options {
	return scanner.Options{
		Marker:      c.Marker,
		Concurrency: c.Concurrency,
		MaxDepth:    c.MaxDepth,
		Excludes:    c.Excludes,
		Logger:      log,
	}
}

// DeleteOptions maps the config onto deleter options.
func (c *Config) DeleteOptions(log *zap.Logger) deleter.Options {
	return deleter.Options{
		Concurrency: c.Concurrency,
		DryRun:      c.DryRun,
		Logger:      log,
	}
}
