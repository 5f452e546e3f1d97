// Package config loads scrolly configuration from TOML or YAML files.
//
// Every field has a default, so a config file only needs the settings it
// changes:
//
//	[server]
//	addr = ":9000"
//
//	[data]
//	countries = "https://example.com/countries.csv"
//	malformed = "fail"
//
//	[layout]
//	debounce = "500ms"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "cache:6379"
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/scrolly/data"
	"github.com/matzehuels/scrolly/pkg/dataset"
	"github.com/matzehuels/scrolly/pkg/errors"
)

const appName = "scrolly"

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the full configuration.
type Config struct {
	Server ServerConfig `toml:"server" yaml:"server"`
	Data   DataConfig   `toml:"data" yaml:"data"`
	Layout LayoutConfig `toml:"layout" yaml:"layout"`
	Cache  CacheConfig  `toml:"cache" yaml:"cache"`
}

// ServerConfig configures `scrolly serve`.
type ServerConfig struct {
	Addr         string   `toml:"addr" yaml:"addr"`
	SessionTTL   Duration `toml:"session_ttl" yaml:"session_ttl"`
	ReapInterval Duration `toml:"reap_interval" yaml:"reap_interval"`
}

// DataConfig locates the datasets. Locations are file paths, http(s) URLs
// or embed:<name> for the bundled files.
type DataConfig struct {
	Countries string `toml:"countries" yaml:"countries"`
	Housing   string `toml:"housing" yaml:"housing"`
	Malformed string `toml:"malformed" yaml:"malformed"`
}

// LayoutConfig sets the default container size and timing.
type LayoutConfig struct {
	Width       int      `toml:"width" yaml:"width"`
	Height      int      `toml:"height" yaml:"height"`
	Debounce    Duration `toml:"debounce" yaml:"debounce"`
	Transitions Duration `toml:"transitions" yaml:"transitions"`
}

// CacheConfig selects the artifact cache.
type CacheConfig struct {
	Backend   string   `toml:"backend" yaml:"backend"`
	Dir       string   `toml:"dir" yaml:"dir"`
	RedisAddr string   `toml:"redis_addr" yaml:"redis_addr"`
	TTL       Duration `toml:"ttl" yaml:"ttl"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			SessionTTL:   Duration(30 * time.Minute),
			ReapInterval: Duration(time.Minute),
		},
		Data: DataConfig{
			Countries: "embed:" + data.Countries,
			Housing:   "embed:" + data.Housing,
			Malformed: string(dataset.PolicyDrop),
		},
		Layout: LayoutConfig{
			Width:       960,
			Height:      600,
			Debounce:    Duration(time.Second),
			Transitions: Duration(250 * time.Millisecond),
		},
		Cache: CacheConfig{
			Backend:   CacheFile,
			RedisAddr: "localhost:6379",
			TTL:       Duration(24 * time.Hour),
		},
	}
}

// Load reads path over the defaults. Files ending in .yaml or .yml are YAML;
// anything else is TOML. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		md, err := toml.Decode(string(raw), cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as TOML, or YAML when path ends in .yaml or .yml.
func Save(path string, cfg *Config) error {
	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		_ = enc.Close()
	default:
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheNone, CacheFile, CacheRedis:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be none, file or redis, got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
	}
	if _, err := dataset.ParsePolicy(c.Data.Malformed); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "data.malformed")
	}
	if c.Data.Countries == "" || c.Data.Housing == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "data.countries and data.housing are required")
	}
	if c.Layout.Width < 0 || c.Layout.Height < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout size must not be negative")
	}
	for name, d := range map[string]Duration{
		"layout.debounce":      c.Layout.Debounce,
		"layout.transitions":   c.Layout.Transitions,
		"server.session_ttl":   c.Server.SessionTTL,
		"server.reap_interval": c.Server.ReapInterval,
		"cache.ttl":            c.Cache.TTL,
	} {
		if d < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must not be negative", name)
		}
	}
	if c.Server.SessionTTL > 0 && c.Server.ReapInterval == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.reap_interval must be set when sessions expire")
	}
	return nil
}

// Policy returns the malformed-row policy.
func (c *Config) Policy() dataset.Policy {
	p, _ := dataset.ParsePolicy(c.Data.Malformed)
	return p
}

// CacheDir returns the cache directory: cache.dir when set, otherwise
// $XDG_CACHE_HOME/scrolly or ~/.cache/scrolly.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
