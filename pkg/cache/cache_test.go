package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/scrolly/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("empty cache reported a hit")
	}

	if err := c.Set(ctx, "artifact:a", []byte("<svg/>"), time.Hour); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "artifact:a")
	if err != nil || !hit || string(data) != "<svg/>" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "artifact:a"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "artifact:a"); hit {
		t.Error("deleted key still present")
	}
	if err := c.Delete(ctx, "artifact:a"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry not removed from disk")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want clean miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Clear() removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
	if err := c.Set(ctx, "d", []byte("d"), 0); err != nil {
		t.Errorf("cache unusable after Clear: %v", err)
	}
}

func TestFileCacheClearKeepsForeignFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}

	notes := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notes, []byte("keep"), 0644); err != nil {
		t.Fatal(err)
	}
	stray := filepath.Join(dir, "ab", "readme.json")
	if err := os.MkdirAll(filepath.Dir(stray), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stray, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Clear() removed %d entries, want 1", n)
	}
	for _, p := range []string{notes, stray} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s removed by Clear: %v", p, err)
		}
	}
	if _, err := os.Stat(filepath.Dir(c.path("k"))); !os.IsNotExist(err) {
		t.Error("empty fan-out directory left behind")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache directory removed: %v", err)
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("SCROLLY_TEST_REDIS")
	if addr == "" {
		t.Skip("SCROLLY_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, addr)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	key := "scrolly-test:" + t.Name()
	if err := c.Set(ctx, key, []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if data, hit, err := c.Get(ctx, key); err != nil || !hit || string(data) != "v" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("deleted key still present")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.HTTPKey("dataset:", "https://example.com/a.csv"); got != "http:dataset:https://example.com/a.csv" {
		t.Errorf("HTTPKey unexpected: %s", got)
	}

	base := ArtifactKeyOpts{Step: "asia", Width: 800, Height: 500}
	tests := []struct {
		name string
		opts ArtifactKeyOpts
	}{
		{"step", ArtifactKeyOpts{Step: "africa", Width: 800, Height: 500}},
		{"width", ArtifactKeyOpts{Step: "asia", Width: 801, Height: 500}},
		{"data", ArtifactKeyOpts{Step: "asia", Width: 800, Height: 500, DataHash: "x"}},
		{"transitions", ArtifactKeyOpts{Step: "asia", Width: 800, Height: 500, Transitions: time.Second}},
		{"transitions-duration", ArtifactKeyOpts{Step: "asia", Width: 800, Height: 500, Transitions: 100 * time.Millisecond}},
		{"fractional-width", ArtifactKeyOpts{Step: "asia", Width: 800.5, Height: 500}},
		{"standalone", ArtifactKeyOpts{Step: "asia", Width: 800, Height: 500, Standalone: true}},
		{"format", ArtifactKeyOpts{Format: "json", Step: "asia", Width: 800, Height: 500}},
	}
	want := k.ArtifactKey("lifeexp", base)
	if !strings.HasPrefix(want, "artifact:") {
		t.Errorf("ArtifactKey prefix: %s", want)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if k.ArtifactKey("lifeexp", tt.opts) == want {
				t.Error("different options produced the same key")
			}
		})
	}
	if k.ArtifactKey("housing", base) == want {
		t.Error("different charts produced the same key")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "v1.0.0:")

	if got := scoped.HTTPKey("dataset:", "x"); got != "v1.0.0:http:dataset:x" {
		t.Errorf("HTTPKey unexpected: %s", got)
	}
	if got := scoped.ArtifactKey("lifeexp", ArtifactKeyOpts{}); !strings.HasPrefix(got, "v1.0.0:artifact:") {
		t.Errorf("ArtifactKey should be prefixed: %s", got)
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := RetryWithBackoff(ctx, 3, time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("err=%v calls=%d, want success after 2 calls", err, calls)
	}

	calls = 0
	plain := errors.New("bad address")
	err = RetryWithBackoff(ctx, 3, time.Millisecond, func() error {
		calls++
		return plain
	})
	if err != plain || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, 3, time.Millisecond, func() error {
		calls++
		return Retryable(ErrNetwork)
	})
	if !errors.Is(err, ErrNetwork) || calls != 3 {
		t.Errorf("exhausted: err=%v calls=%d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, 3, time.Second, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
	lastType           string
}

func (h *countingHooks) OnCacheHit(_ context.Context, keyType string) {
	h.hits++
	h.lastType = keyType
}
func (h *countingHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestObserved(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	t.Cleanup(observability.Reset)

	ctx := context.Background()
	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := Observed(fc)
	key := NewScopedKeyer(nil, "dev:").ArtifactKey("lifeexp", ArtifactKeyOpts{})

	_, _, _ = c.Get(ctx, key)
	_ = c.Set(ctx, key, []byte("x"), 0)
	_, _, _ = c.Get(ctx, key)

	if hooks.hits != 1 || hooks.misses != 1 || hooks.sets != 1 {
		t.Errorf("hits=%d misses=%d sets=%d", hooks.hits, hooks.misses, hooks.sets)
	}
	if hooks.lastType != "artifact" {
		t.Errorf("key type = %q, want artifact", hooks.lastType)
	}
}
