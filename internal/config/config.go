package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const defaultConfigPath = "docsearch.toml"

// Backend selects the server-side search index implementation.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendBleve  Backend = "bleve"
	BackendNone   Backend = "none"
)

type IndexConfig struct {
	Backend Backend `mapstructure:"backend"`
	Path    string  `mapstructure:"path"`
}

// Config is the build configuration of one documentation module.
type Config struct {
	ModuleName                string      `mapstructure:"module_name"`
	DelayTemplateSubstitution bool        `mapstructure:"delay_template_substitution"`
	Manifest                  string      `mapstructure:"manifest"`
	OutputDir                 string      `mapstructure:"output_dir"`
	Site                      string      `mapstructure:"site"`
	Index                     IndexConfig `mapstructure:"index"`
	Precompress               bool        `mapstructure:"precompress"`
	Workers                   int         `mapstructure:"workers"`
	LogLevel                  string      `mapstructure:"log_level"`
}

func DefaultPath() string {
	if path := os.Getenv("DOCSEARCH_CONFIG_FILE"); path != "" {
		return path
	}
	return defaultConfigPath
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("module_name", "")
	v.SetDefault("delay_template_substitution", false)
	v.SetDefault("manifest", "")
	v.SetDefault("output_dir", "public")
	v.SetDefault("site", "")
	v.SetDefault("index.backend", string(BackendSQLite))
	v.SetDefault("index.path", "")
	v.SetDefault("precompress", false)
	v.SetDefault("workers", 8)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("DOCSEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration file at path (JSON, TOML or YAML by
// extension), overlays DOCSEARCH_* environment variables and validates
// the result. A missing file at the default path is not an error.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if path != defaultConfigPath || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       stringToBackendHookFunc(),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func stringToBackendHookFunc() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(Backend("")) || f.Kind() != reflect.String {
			return data, nil
		}
		return Backend(strings.ToLower(strings.TrimSpace(data.(string)))), nil
	}
}

func (c *Config) Validate() error {
	if c.ModuleName == "" {
		return errors.New("config module_name is required")
	}
	if c.OutputDir == "" {
		return errors.New("config output_dir is required")
	}
	switch c.Index.Backend {
	case BackendSQLite, BackendBleve, BackendNone:
	default:
		return fmt.Errorf("config index.backend %q is not one of sqlite, bleve, none", c.Index.Backend)
	}
	if c.Workers < 0 {
		return errors.New("config workers must not be negative")
	}
	return nil
}

func (c *Config) IndexPath() string {
	if c.Index.Path != "" {
		return c.Index.Path
	}
	switch c.Index.Backend {
	case BackendBleve:
		return filepath.Join(c.OutputDir, "search.bleve")
	case BackendNone:
		return ""
	}
	return filepath.Join(c.OutputDir, "search.db")
}

func (c *Config) SiteURL() string {
	return strings.TrimRight(c.Site, "/")
}
