// Package config provides configuration management for vcsprompt.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/dvidx/vcsprompt/internal/domain"
)

// Config holds all configuration for vcsprompt. Everything has a
// default; a missing config file is not an error, and the tool never
// writes one itself.
type Config struct {
	Format     FormatConfig     `mapstructure:"format"`
	Output     OutputConfig     `mapstructure:"output"`
	Dirty      DirtyConfig      `mapstructure:"dirty"`
	Divergence DivergenceConfig `mapstructure:"divergence"`
	Detect     DetectConfig     `mapstructure:"detect"`
	Locate     LocateConfig     `mapstructure:"locate"`
	Symbols    SymbolsConfig    `mapstructure:"symbols"`
}

// FormatConfig holds format string settings.
type FormatConfig struct {
	// Default is used when no -f flag is given.
	Default string `mapstructure:"default"`
	// Strict rejects unrecognized placeholders instead of passing them
	// through literally.
	Strict bool `mapstructure:"strict"`
}

// OutputConfig holds output behavior settings.
type OutputConfig struct {
	// Fallback is printed instead of nothing when no repository is
	// found. The exit code still signals not-found.
	Fallback string `mapstructure:"fallback"`
	// Color enables styled output.
	Color bool `mapstructure:"color"`
}

// DirtyConfig holds working-tree check settings.
type DirtyConfig struct {
	Mode          string `mapstructure:"mode"`
	MaxEntries    int    `mapstructure:"max_entries"`
	Marker        string `mapstructure:"marker"`
	UnknownMarker string `mapstructure:"unknown_marker"`
	ShowUnknown   bool   `mapstructure:"show_unknown"`
}

// DivergenceConfig holds the markers prefixing the %A and %B upstream
// drift counts.
type DivergenceConfig struct {
	AheadMarker  string `mapstructure:"ahead_marker"`
	BehindMarker string `mapstructure:"behind_marker"`
}

// DetectConfig holds repository detection settings.
type DetectConfig struct {
	// Order is the backend precedence when one directory carries
	// markers of several kinds.
	Order []string `mapstructure:"order"`
}

// LocateConfig holds directory-ascent settings.
type LocateConfig struct {
	// MaxDepth caps the ascent; 0 walks to the filesystem root.
	MaxDepth int `mapstructure:"max_depth"`
}

// SymbolsConfig overrides the %n rendering per backend.
type SymbolsConfig struct {
	Git string `mapstructure:"git"`
	Hg  string `mapstructure:"hg"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Format: FormatConfig{
			Default: "%n:%b%m",
		},
		Output: OutputConfig{},
		Dirty: DirtyConfig{
			Mode:          string(domain.DirtyModeMtime),
			MaxEntries:    10000,
			Marker:        "+",
			UnknownMarker: "?",
		},
		Divergence: DivergenceConfig{
			AheadMarker:  "⇡",
			BehindMarker: "⇣",
		},
		Detect: DetectConfig{
			Order: []string{string(domain.KindGit), string(domain.KindHg)},
		},
		Symbols: SymbolsConfig{
			Git: "git",
			Hg:  "hg",
		},
	}
}

// Load reads the configuration file if present and applies VCSP_*
// environment overrides on top of the defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix("VCSP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	configPath, err := GetConfigPath()
	if err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", configPath, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "vcsprompt", "config.toml"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "vcsprompt", "config.toml"), nil
}

// DetectOrder parses the configured backend precedence, silently
// skipping unknown names; an empty result falls back to the default
// order.
func (c *Config) DetectOrder() []domain.Kind {
	var order []domain.Kind
	for _, name := range c.Detect.Order {
		kind, err := domain.ParseKind(name)
		if err != nil {
			continue
		}
		order = append(order, kind)
	}
	if len(order) == 0 {
		return domain.AllKinds
	}
	return order
}

// DirtyMode parses the configured dirty strategy, falling back to the
// mtime heuristic on an unknown name.
func (c *Config) DirtyMode() domain.DirtyMode {
	mode, err := domain.ParseDirtyMode(c.Dirty.Mode)
	if err != nil {
		return domain.DirtyModeMtime
	}
	return mode
}

// SymbolMap returns the per-backend %n symbols.
func (c *Config) SymbolMap() map[domain.Kind]string {
	return map[domain.Kind]string{
		domain.KindGit: c.Symbols.Git,
		domain.KindHg:  c.Symbols.Hg,
	}
}

// setDefaults sets default values for viper.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("format.default", def.Format.Default)
	v.SetDefault("format.strict", def.Format.Strict)
	v.SetDefault("output.fallback", def.Output.Fallback)
	v.SetDefault("output.color", def.Output.Color)
	v.SetDefault("dirty.mode", def.Dirty.Mode)
	v.SetDefault("dirty.max_entries", def.Dirty.MaxEntries)
	v.SetDefault("dirty.marker", def.Dirty.Marker)
	v.SetDefault("dirty.unknown_marker", def.Dirty.UnknownMarker)
	v.SetDefault("dirty.show_unknown", def.Dirty.ShowUnknown)
	v.SetDefault("divergence.ahead_marker", def.Divergence.AheadMarker)
	v.SetDefault("divergence.behind_marker", def.Divergence.BehindMarker)
	v.SetDefault("detect.order", def.Detect.Order)
	v.SetDefault("locate.max_depth", def.Locate.MaxDepth)
	v.SetDefault("symbols.git", def.Symbols.Git)
	v.SetDefault("symbols.hg", def.Symbols.Hg)
}
