package cli

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/unshred/pkg/cache"
	"github.com/matzehuels/unshred/pkg/config"
	"github.com/matzehuels/unshred/pkg/store"
)

func TestCacheDir(t *testing.T) {
	t.Run("xdg", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
		dir, err := cacheDir()
		if err != nil {
			t.Fatal(err)
		}
		if want := filepath.Join("/tmp/xdg-cache", appName); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})

	t.Run("home", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("XDG_CACHE_HOME", "")
		t.Setenv("HOME", home)
		dir, err := cacheDir()
		if err != nil {
			t.Fatal(err)
		}
		if want := filepath.Join(home, ".cache", appName); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})
}

func TestFileCacheDirPrefersConfig(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	dir, err := fileCacheDir(config.CacheConfig{Dir: "/srv/unshred"})
	if err != nil || dir != "/srv/unshred" {
		t.Errorf("fileCacheDir(configured) = %q, %v", dir, err)
	}
	dir, err = fileCacheDir(config.CacheConfig{})
	if err != nil || dir != filepath.Join("/tmp/xdg-cache", appName) {
		t.Errorf("fileCacheDir(default) = %q, %v", dir, err)
	}
}

func TestNewCacheBackends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.CacheConfig
		noCache bool
		check   func(cache.Cache) bool
	}{
		{"none", config.CacheConfig{Backend: config.BackendNone}, false, func(c cache.Cache) bool {
			_, ok := c.(cache.NullCache)
			return ok
		}},
		{"no-cache flag", config.CacheConfig{Backend: config.BackendFile, Dir: dir}, true, func(c cache.Cache) bool {
			_, ok := c.(cache.NullCache)
			return ok
		}},
		{"memory", config.CacheConfig{Backend: config.BackendMemory}, false, func(c cache.Cache) bool {
			_, ok := c.(*cache.MemoryCache)
			return ok
		}},
		{"file", config.CacheConfig{Backend: config.BackendFile, Dir: dir}, false, func(c cache.Cache) bool {
			fc, ok := c.(*cache.FileCache)
			return ok && fc.Dir() == dir
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := newCache(ctx, tt.cfg, tt.noCache)
			if err != nil {
				t.Fatalf("newCache: %v", err)
			}
			defer c.Close()
			if !tt.check(c) {
				t.Errorf("newCache returned %T", c)
			}
		})
	}
}

func TestNewStoreBackends(t *testing.T) {
	ctx := context.Background()

	s, err := newStore(ctx, config.StoreConfig{Backend: config.BackendNone})
	if err != nil || s != nil {
		t.Errorf("newStore(none) = %v, %v; want nil, nil", s, err)
	}

	dir := t.TempDir()
	s, err = newStore(ctx, config.StoreConfig{Backend: config.BackendFile, Dir: dir})
	if err != nil {
		t.Fatalf("newStore(file): %v", err)
	}
	defer s.Close()
	if _, ok := s.(*store.FileStore); !ok {
		t.Errorf("newStore(file) returned %T", s)
	}
}

func TestNewRunnerKeyPrefix(t *testing.T) {
	c := New(io.Discard, LogInfo)
	cfg := config.Default()
	cfg.Cache.Backend = config.BackendMemory

	tests := []struct {
		prefix string
		scoped bool
	}{
		{"", false},
		{"tenant-a:", true},
	}
	for _, tt := range tests {
		cfg.Cache.KeyPrefix = tt.prefix
		runner, err := c.newRunner(context.Background(), cfg, false)
		if err != nil {
			t.Fatal(err)
		}
		key := runner.Keyer.SolutionKey("abc", cache.SolutionKeyOpts{})
		if got := strings.HasPrefix(key, "tenant-a:"); got != tt.scoped {
			t.Errorf("prefix %q: key %q", tt.prefix, key)
		}
		if runner.TTL != cfg.Cache.TTL.Duration {
			t.Errorf("TTL = %v, want %v", runner.TTL, cfg.Cache.TTL.Duration)
		}
		runner.Close()
	}
}
