// Package config loads hyprink's TOML configuration. Values come from, in
// increasing priority: built-in defaults, the config file, and HYPRINK_*
// environment variables (HYPRINK_LOGGING_APP_NAME overrides
// logging.app_name).
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/crimson-sun/hyprink/internal/errors"
	"github.com/crimson-sun/hyprink/internal/model"
	"github.com/crimson-sun/hyprink/internal/preset"
)

// EnvPath names the environment variable that points at a config file.
const EnvPath = "HYPRINK_CONFIG"

// Config holds all hyprink configuration.
type Config struct {
	Theme       ThemeConfig              `mapstructure:"theme" toml:"theme"`
	Icons       IconsConfig              `mapstructure:"icons" toml:"icons"`
	Layout      LayoutConfig             `mapstructure:"layout" toml:"layout"`
	Logging     LoggingConfig            `mapstructure:"logging" toml:"logging"`
	Diagnostics DiagnosticsConfig        `mapstructure:"diagnostics" toml:"diagnostics"`
	Pack        PackConfig               `mapstructure:"pack" toml:"pack"`
	Presets     map[string]preset.Record `mapstructure:"presets" toml:"presets,omitempty" validate:"dive"`
}

// ThemeConfig holds colors and the active icon set.
type ThemeConfig struct {
	Name        string            `mapstructure:"name" toml:"name"`
	ActiveIcons string            `mapstructure:"active_icons" toml:"active_icons" validate:"oneof=nerdfont ascii"`
	Colorize    string            `mapstructure:"colorize" toml:"colorize" validate:"oneof=auto always never"`
	Colors      map[string]string `mapstructure:"colors" toml:"colors" validate:"dive,hexcolor"`
}

// IconsConfig holds the two icon sets, keyed by level name.
type IconsConfig struct {
	Nerdfont map[string]string `mapstructure:"nerdfont" toml:"nerdfont"`
	ASCII    map[string]string `mapstructure:"ascii" toml:"ascii"`
}

// LayoutConfig controls how lines look.
type LayoutConfig struct {
	Tag       TagConfig         `mapstructure:"tag" toml:"tag"`
	Labels    map[string]string `mapstructure:"labels" toml:"labels"`
	Structure StructureConfig   `mapstructure:"structure" toml:"structure"`
}

// TagConfig mirrors render.TagStyle.
type TagConfig struct {
	Prefix    string `mapstructure:"prefix" toml:"prefix"`
	Suffix    string `mapstructure:"suffix" toml:"suffix"`
	Transform string `mapstructure:"transform" toml:"transform" validate:"oneof=none uppercase lowercase capitalize"`
	MinWidth  int    `mapstructure:"min_width" toml:"min_width" validate:"gte=0,lte=64"`
	Alignment string `mapstructure:"alignment" toml:"alignment" validate:"oneof=left right center"`
}

// StructureConfig holds the line templates.
type StructureConfig struct {
	Terminal string `mapstructure:"terminal" toml:"terminal" validate:"required"`
	File     string `mapstructure:"file" toml:"file" validate:"required"`
}

// LoggingConfig controls the file sink.
type LoggingConfig struct {
	BaseDir           string `mapstructure:"base_dir" toml:"base_dir" validate:"required"`
	PathStructure     string `mapstructure:"path_structure" toml:"path_structure"`
	FilenameStructure string `mapstructure:"filename_structure" toml:"filename_structure" validate:"required"`
	TimestampFormat   string `mapstructure:"timestamp_format" toml:"timestamp_format" validate:"required"`
	WriteByDefault    bool   `mapstructure:"write_by_default" toml:"write_by_default"`
	AppName           string `mapstructure:"app_name" toml:"app_name"`
	MaxSizeBytes      int64  `mapstructure:"max_size_bytes" toml:"max_size_bytes" validate:"gte=0"`
}

// DiagnosticsConfig controls hyprink's own slog output.
type DiagnosticsConfig struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
	Level   string `mapstructure:"level" toml:"level" validate:"oneof=debug info warn error"`
	JSON    bool   `mapstructure:"json" toml:"json"`
}

// PackConfig controls the packing engine.
type PackConfig struct {
	Workers int `mapstructure:"workers" toml:"workers" validate:"gte=0,lte=256"` // 0 = GOMAXPROCS
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Theme: ThemeConfig{
			Name:        "default",
			ActiveIcons: "nerdfont",
			Colorize:    "auto",
			Colors: map[string]string{
				"fg":      "#cdd6f4",
				"trace":   "#6c7086",
				"debug":   "#89b4fa",
				"info":    "#89dceb",
				"success": "#a6e3a1",
				"warn":    "#f9e2af",
				"error":   "#f38ba8",
				"red":     "#f38ba8",
				"green":   "#a6e3a1",
				"yellow":  "#f9e2af",
				"blue":    "#89b4fa",
				"cyan":    "#89dceb",
				"magenta": "#cba6f7",
			},
		},
		Icons: IconsConfig{
			Nerdfont: map[string]string{
				"trace":   "\uf46a",
				"debug":   "\uf188",
				"info":    "\uf05a",
				"success": "\uf00c",
				"warn":    "\uf071",
				"error":   "\uf00d",
			},
			ASCII: map[string]string{
				"trace":   ".",
				"debug":   "*",
				"info":    "i",
				"success": "+",
				"warn":    "!",
				"error":   "x",
			},
		},
		Layout: LayoutConfig{
			Tag: TagConfig{
				Prefix:    "[",
				Suffix:    "]",
				Transform: "uppercase",
				MinWidth:  0,
				Alignment: "center",
			},
			Labels: map[string]string{},
			Structure: StructureConfig{
				Terminal: "{tag} {scope}: {msg}",
				File:     "{timestamp} {tag} {scope}: {msg}",
			},
		},
		Logging: LoggingConfig{
			BaseDir:           "~/.local/share/hyprink/logs",
			PathStructure:     "{app}/{year}/{month}",
			FilenameStructure: "{scope}-{day}.log",
			TimestampFormat:   "%Y-%m-%d %H:%M:%S",
			WriteByDefault:    false,
			AppName:           "hyprink",
			MaxSizeBytes:      0,
		},
		Diagnostics: DiagnosticsConfig{
			Enabled: false,
			Level:   "warn",
			JSON:    false,
		},
		Pack: PackConfig{Workers: 0},
	}
}

// setDefaults registers every default with v so env overrides apply to
// keys missing from the file.
func setDefaults(v *viper.Viper) {
	d := Default()

	// Theme
	v.SetDefault("theme.name", d.Theme.Name)
	v.SetDefault("theme.active_icons", d.Theme.ActiveIcons)
	v.SetDefault("theme.colorize", d.Theme.Colorize)
	setMapDefaults(v, "theme.colors", d.Theme.Colors)

	// Icons
	setMapDefaults(v, "icons.nerdfont", d.Icons.Nerdfont)
	setMapDefaults(v, "icons.ascii", d.Icons.ASCII)

	// Layout
	v.SetDefault("layout.tag.prefix", d.Layout.Tag.Prefix)
	v.SetDefault("layout.tag.suffix", d.Layout.Tag.Suffix)
	v.SetDefault("layout.tag.transform", d.Layout.Tag.Transform)
	v.SetDefault("layout.tag.min_width", d.Layout.Tag.MinWidth)
	v.SetDefault("layout.tag.alignment", d.Layout.Tag.Alignment)
	setMapDefaults(v, "layout.labels", d.Layout.Labels)
	v.SetDefault("layout.structure.terminal", d.Layout.Structure.Terminal)
	v.SetDefault("layout.structure.file", d.Layout.Structure.File)

	// Logging
	v.SetDefault("logging.base_dir", d.Logging.BaseDir)
	v.SetDefault("logging.path_structure", d.Logging.PathStructure)
	v.SetDefault("logging.filename_structure", d.Logging.FilenameStructure)
	v.SetDefault("logging.timestamp_format", d.Logging.TimestampFormat)
	v.SetDefault("logging.write_by_default", d.Logging.WriteByDefault)
	v.SetDefault("logging.app_name", d.Logging.AppName)
	v.SetDefault("logging.max_size_bytes", d.Logging.MaxSizeBytes)

	// Diagnostics
	v.SetDefault("diagnostics.enabled", d.Diagnostics.Enabled)
	v.SetDefault("diagnostics.level", d.Diagnostics.Level)
	v.SetDefault("diagnostics.json", d.Diagnostics.JSON)

	// Pack
	v.SetDefault("pack.workers", d.Pack.Workers)
}

// setMapDefaults registers one default per map key. A whole-map default
// would be replaced by any partial table from the file.
func setMapDefaults(v *viper.Viper, prefix string, m map[string]string) {
	for k, val := range m {
		v.SetDefault(prefix+"."+k, val)
	}
}

// fillDefaults adds the default entries a partial table left out.
func fillDefaults(c *Config) {
	d := Default()
	c.Theme.Colors = fillMap(c.Theme.Colors, d.Theme.Colors)
	c.Icons.Nerdfont = fillMap(c.Icons.Nerdfont, d.Icons.Nerdfont)
	c.Icons.ASCII = fillMap(c.Icons.ASCII, d.Icons.ASCII)
	c.Layout.Labels = fillMap(c.Layout.Labels, d.Layout.Labels)
}

func fillMap(dst, defaults map[string]string) map[string]string {
	if dst == nil {
		dst = make(map[string]string, len(defaults))
	}
	for k, v := range defaults {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
	return dst
}

// DefaultPath returns $XDG_CONFIG_HOME/hyprink/hyprink.toml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "hyprink", "hyprink.toml")
}

// Load reads configuration. An explicit path, or $HYPRINK_CONFIG, must
// exist; the default path is used only when present. With no file at all
// the defaults plus environment overrides are returned.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("HYPRINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	required := true
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path == "" {
		path, required = DefaultPath(), false
	}
	if path != "" {
		_, statErr := os.Stat(path)
		switch {
		case statErr == nil:
			v.SetConfigFile(path)
			v.SetConfigType("toml")
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.E(errors.KindInvalidArgument, "config", path, err)
			}
		case required || !os.IsNotExist(statErr):
			return nil, errors.E(errors.KindIO, "config", path, statErr)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.E(errors.KindInvalidArgument, "config", path, err)
	}
	fillDefaults(&cfg)
	if verrs := cfg.Validate(); len(verrs) > 0 {
		return nil, errors.E(errors.KindInvalidArgument, "config", path, verrs)
	}
	return &cfg, nil
}

// ActiveIcons returns the icon set selected by the theme.
func (c *Config) ActiveIcons() map[string]string {
	if c.Theme.ActiveIcons == "ascii" {
		return c.Icons.ASCII
	}
	return c.Icons.Nerdfont
}

// PresetList converts the configured presets, ordered by name.
func (c *Config) PresetList() ([]model.Preset, error) {
	return preset.FromRecords(c.Presets)
}

// Encode renders c as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode TOML: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDefault writes the default configuration to path, creating parent
// directories. An existing file is kept unless overwrite is set.
func WriteDefault(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.E(errors.KindInvalidArgument, "config", path, os.ErrExist)
		}
	}
	data, err := Default().Encode()
	if err != nil {
		return errors.E(errors.KindInternal, "config", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.E(errors.KindIO, "config", path, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.E(errors.KindIO, "config", path, err)
	}
	return nil
}
