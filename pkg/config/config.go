// Package config loads walker settings from walker.yaml, WALKER_* environment
// variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/revoverflow/walker/pkg/matcher"
)

// EnvPrefix namespaces environment overrides, e.g. WALKER_SCAN_WORKERS.
const EnvPrefix = "WALKER"

// DefaultOutputPath is where scan writes its text report.
const DefaultOutputPath = "walker_results.txt"

// Output formats.
const (
	FormatText  = "text"
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatSARIF = "sarif"
)

// Config is the decoded settings tree.
type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	Scan   ScanConfig   `mapstructure:"scan"`
	Output OutputConfig `mapstructure:"output"`
	Azure  AzureConfig  `mapstructure:"azure"`
}

// ScanConfig tunes buffer enumeration and matching.
type ScanConfig struct {
	Workers         int    `mapstructure:"workers"`
	ByteOrder       string `mapstructure:"byte_order"`
	Prefilter       bool   `mapstructure:"prefilter"`
	MaxFileSize     int64  `mapstructure:"max_file_size"`
	IncludeHidden   bool   `mapstructure:"include_hidden"`
	FollowSymlinks  bool   `mapstructure:"follow_symlinks"`
	ExtractArchives bool   `mapstructure:"extract_archives"`
}

// OutputConfig selects where and how results are written.
type OutputConfig struct {
	Path      string `mapstructure:"path"`
	Format    string `mapstructure:"format"`
	Datastore string `mapstructure:"datastore"`
	Color     string `mapstructure:"color"`
}

// AzureConfig authenticates azblob:// targets.
type AzureConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("scan.workers", 0)
	v.SetDefault("scan.byte_order", "little")
	v.SetDefault("scan.prefilter", true)
	v.SetDefault("scan.max_file_size", 0)
	v.SetDefault("scan.include_hidden", false)
	v.SetDefault("scan.follow_symlinks", false)
	v.SetDefault("scan.extract_archives", true)
	v.SetDefault("output.path", DefaultOutputPath)
	v.SetDefault("output.format", FormatText)
	v.SetDefault("output.datastore", "")
	v.SetDefault("output.color", "auto")
	v.SetDefault("azure.connection_string", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile loads path into v. An empty path searches ./walker.yaml and
// $HOME/.walker/walker.yaml, and a missing file is not an error then.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("walker")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".walker"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Decode unmarshals and validates v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the scan cannot honour.
func (c *Config) Validate() error {
	if c.Scan.Workers < 0 {
		return fmt.Errorf("scan.workers must be >= 0, got %d", c.Scan.Workers)
	}
	if c.Scan.MaxFileSize < 0 {
		return fmt.Errorf("scan.max_file_size must be >= 0, got %d", c.Scan.MaxFileSize)
	}
	if _, err := matcher.ParseByteOrder(c.Scan.ByteOrder); err != nil {
		return fmt.Errorf("scan.byte_order: %w", err)
	}
	switch c.Output.Format {
	case FormatText, FormatHuman, FormatJSON, FormatSARIF:
	default:
		return fmt.Errorf("output.format must be text, human, json or sarif, got %q", c.Output.Format)
	}
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("output.color must be auto, always or never, got %q", c.Output.Color)
	}
	return nil
}
