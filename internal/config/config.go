// Package config loads the application settings. The per-directory
// category file is handled by the store package.
package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"pictag/internal/errors"
	"pictag/internal/media"
	"pictag/internal/store"
	"pictag/pkg/types"
)

// EnvPrefix is prepended to every environment override, e.g.
// PICTAG_STORE_BACKEND
const EnvPrefix = "PICTAG"

// Config represents the application configuration structure
type Config struct {
	Directories struct {
		Default string `mapstructure:"default" yaml:"default"` // Directory opened when none is given
	} `mapstructure:"directories" yaml:"directories"`
	Store struct {
		Backend  string `mapstructure:"backend" yaml:"backend"`   // file or sqlite
		Filename string `mapstructure:"filename" yaml:"filename"` // Overrides the backend's file name
	} `mapstructure:"store" yaml:"store"`
	Scan struct {
		MinSizeKB  int64    `mapstructure:"min_size_kb" yaml:"min_size_kb"`
		Extensions []string `mapstructure:"extensions" yaml:"extensions"`
	} `mapstructure:"scan" yaml:"scan"`
	View struct {
		Sort      string `mapstructure:"sort" yaml:"sort"`
		Direction string `mapstructure:"direction" yaml:"direction"`
	} `mapstructure:"view" yaml:"view"`
	Cache struct {
		MaxMB int64 `mapstructure:"max_mb" yaml:"max_mb"` // Image data cache, 0 disables it
	} `mapstructure:"cache" yaml:"cache"`
	Log struct {
		Debug bool   `mapstructure:"debug" yaml:"debug"`
		JSON  bool   `mapstructure:"json" yaml:"json"`
		File  string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"log" yaml:"log"`
	Theme Theme `mapstructure:"theme" yaml:"theme"`
}

// Theme holds the terminal colours, as ANSI 256 codes or hex values
type Theme struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Primary  string `mapstructure:"primary" yaml:"primary"`
	Success  string `mapstructure:"success" yaml:"success"`
	Warning  string `mapstructure:"warning" yaml:"warning"`
	Error    string `mapstructure:"error" yaml:"error"`
	Info     string `mapstructure:"info" yaml:"info"`
	Emphasis string `mapstructure:"emphasis" yaml:"emphasis"`
	Border   string `mapstructure:"border" yaml:"border"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("directories.default", ".")
	v.SetDefault("store.backend", store.BackendFile)
	v.SetDefault("store.filename", "")
	v.SetDefault("scan.min_size_kb", media.DefaultMinSizeKB)
	v.SetDefault("scan.extensions", media.DefaultExtensions)
	v.SetDefault("view.sort", string(types.SortName))
	v.SetDefault("view.direction", string(types.Ascending))
	v.SetDefault("cache.max_mb", media.DefaultCacheBytes>>20)
	v.SetDefault("log.debug", false)
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", "")
	v.SetDefault("theme.name", "default")
}

// DefaultPath returns $XDG_CONFIG_HOME/pictag/config.yaml, falling back
// to ~/.config/pictag/config.yaml
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pictag", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pictag", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location
func LoadConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, errors.NewConfigError("cannot determine config directory", "", errors.InvalidConfig, err)
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads configuration from path. A missing file yields the
// defaults. PICTAG_* environment variables override both.
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewConfigError("error parsing config file", path, errors.InvalidConfig, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.NewConfigError("error decoding config file", path, errors.InvalidConfig, err)
	}
	cfg.fillTheme()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// New returns the default configuration
func New() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	cfg.fillTheme()
	return cfg
}

// SaveConfig writes cfg as YAML, creating parent directories
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewFileError("failed to create config directory", filepath.Dir(path), errors.FileOperationFailed, err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewFileError("failed to write config file", path, errors.FileOperationFailed, err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c == nil {
		return errors.NewConfigError("nil config", "", errors.InvalidConfig, nil)
	}
	switch strings.ToLower(c.Store.Backend) {
	case store.BackendFile, store.BackendSQLite:
	default:
		return errors.NewConfigError("invalid store backend: "+c.Store.Backend, "store.backend", errors.InvalidConfig, nil)
	}
	if c.Scan.MinSizeKB < 0 {
		return errors.NewConfigError("scan.min_size_kb must be >= 0", "scan.min_size_kb", errors.InvalidConfig, nil)
	}
	if c.Cache.MaxMB < 0 {
		return errors.NewConfigError("cache.max_mb must be >= 0", "cache.max_mb", errors.InvalidConfig, nil)
	}
	if _, err := types.ParseSortField(c.View.Sort); err != nil {
		return errors.NewConfigError("invalid sort field: "+c.View.Sort, "view.sort", errors.InvalidConfig, err)
	}
	if _, err := types.ParseSortDirection(c.View.Direction); err != nil {
		return errors.NewConfigError("invalid sort direction: "+c.View.Direction, "view.direction", errors.InvalidConfig, err)
	}
	return nil
}

// SortOption returns the configured initial ordering
func (c *Config) SortOption() types.SortOption {
	field, err := types.ParseSortField(c.View.Sort)
	if err != nil {
		field = types.SortName
	}
	dir, err := types.ParseSortDirection(c.View.Direction)
	if err != nil {
		dir = types.Ascending
	}
	return types.SortOption{Field: field, Direction: dir}
}

// GetTheme returns a predefined theme configuration by name.
// If the theme doesn't exist, returns the default theme.
func GetTheme(name string) map[string]string {
	themes := map[string]map[string]string{
		"default": {
			"primary":  "213", // Purple
			"success":  "114", // Green
			"warning":  "220", // Yellow
			"error":    "196", // Red
			"info":     "39",  // Blue
			"emphasis": "212", // Light Pink
			"border":   "213",
		},
		"dark": {
			"primary":  "105",
			"success":  "78",
			"warning":  "214",
			"error":    "160",
			"info":     "33",
			"emphasis": "147",
			"border":   "105",
		},
		"light": {
			"primary":  "135",
			"success":  "150",
			"warning":  "222",
			"error":    "210",
			"info":     "117",
			"emphasis": "219",
			"border":   "135",
		},
		"monochrome": {
			"primary":  "245",
			"success":  "252",
			"warning":  "241",
			"error":    "232",
			"info":     "248",
			"emphasis": "255",
			"border":   "245",
		},
	}

	if theme, exists := themes[name]; exists {
		return theme
	}
	return themes["default"]
}

// ApplyTheme replaces the colours with the named preset
func (c *Config) ApplyTheme(name string) {
	theme := GetTheme(name)
	c.Theme = Theme{
		Name:     name,
		Primary:  theme["primary"],
		Success:  theme["success"],
		Warning:  theme["warning"],
		Error:    theme["error"],
		Info:     theme["info"],
		Emphasis: theme["emphasis"],
		Border:   theme["border"],
	}
}

// fillTheme takes every colour left empty from the named preset
func (c *Config) fillTheme() {
	preset := GetTheme(c.Theme.Name)
	for key, field := range map[string]*string{
		"primary":  &c.Theme.Primary,
		"success":  &c.Theme.Success,
		"warning":  &c.Theme.Warning,
		"error":    &c.Theme.Error,
		"info":     &c.Theme.Info,
		"emphasis": &c.Theme.Emphasis,
		"border":   &c.Theme.Border,
	} {
		if *field == "" {
			*field = preset[key]
		}
	}
}

// ListThemes returns a list of available theme names.
func ListThemes() []string {
	return []string{"default", "dark", "light", "monochrome"}
}
