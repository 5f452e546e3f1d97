package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/scrolly/pkg/dataset"
	"github.com/matzehuels/scrolly/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Layout.Debounce.Std() != time.Second {
		t.Errorf("debounce = %v, want 1s", cfg.Layout.Debounce)
	}
	if cfg.Policy() != dataset.PolicyDrop {
		t.Errorf("policy = %q", cfg.Policy())
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "scrolly.toml", `
[server]
addr = ":9000"

[data]
malformed = "fail"

[layout]
debounce = "500ms"

[cache]
backend = "redis"
redis_addr = "cache:6379"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9000" || cfg.Cache.Backend != CacheRedis || cfg.Cache.RedisAddr != "cache:6379" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Layout.Debounce.Std() != 500*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Layout.Debounce)
	}
	if cfg.Policy() != dataset.PolicyFail {
		t.Errorf("policy = %q", cfg.Policy())
	}
	if cfg.Layout.Width != 960 || cfg.Server.SessionTTL.Std() != 30*time.Minute {
		t.Error("unset keys lost their defaults")
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "scrolly.yaml", `
layout:
  width: 1200
  transitions: 0s
data:
  countries: ./countries.csv
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Layout.Width != 1200 || cfg.Layout.Transitions != 0 || cfg.Data.Countries != "./countries.csv" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Layout.Height != 600 {
		t.Errorf("height = %d, want default 600", cfg.Layout.Height)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, file, content string
	}{
		{"unknown toml key", "c.toml", "[server]\nport = 1\n"},
		{"unknown yaml key", "c.yml", "server:\n  port: 1\n"},
		{"bad duration", "c.toml", "[layout]\ndebounce = \"soon\"\n"},
		{"bad backend", "c.toml", "[cache]\nbackend = \"memcached\"\n"},
		{"bad policy", "c.toml", "[data]\nmalformed = \"ignore\"\n"},
		{"negative size", "c.yaml", "layout:\n  width: -1\n"},
		{"negative ttl", "c.toml", "[cache]\nttl = \"-1h\"\n"},
		{"syntax", "c.toml", "[server\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want INVALID_CONFIG", err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("missing file: err = %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"out.toml", "out.yaml"} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.Server.Addr = "127.0.0.1:1"
			cfg.Layout.Debounce = Duration(2 * time.Second)

			path := filepath.Join(t.TempDir(), name)
			if err := Save(path, cfg); err != nil {
				t.Fatal(err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatal(err)
			}
			if *got != *cfg {
				t.Errorf("round trip = %+v, want %+v", got, cfg)
			}
		})
	}
}

func TestCacheDir(t *testing.T) {
	cfg := Default()
	cfg.Cache.Dir = "/tmp/explicit"
	if dir, _ := cfg.CacheDir(); dir != "/tmp/explicit" {
		t.Errorf("CacheDir = %q", dir)
	}

	cfg.Cache.Dir = ""
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	if dir, _ := cfg.CacheDir(); dir != filepath.Join("/tmp/xdg", "scrolly") {
		t.Errorf("CacheDir = %q", dir)
	}
}
