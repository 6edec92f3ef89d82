package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "solution:abc"); err != nil || hit {
		t.Fatalf("Get on empty cache = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "solution:abc", []byte("payload"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "solution:abc")
	if err != nil || !hit {
		t.Fatalf("Get after Set = hit %v, err %v", hit, err)
	}
	if !bytes.Equal(data, []byte("payload")) {
		t.Errorf("Get = %q, want payload", data)
	}

	if err := c.Delete(ctx, "solution:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "solution:abc"); hit {
		t.Error("entry should be gone after Delete")
	}
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of a missing key should succeed: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}
	now = now.Add(59 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("entry should live until its TTL")
	}
	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should be a miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
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
		t.Errorf("corrupt entry = hit %v, err %v; want clean miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
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
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() removed %d entries, want 3", n)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after Clear", len(entries))
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", c.Dir(), dir)
	}
}

func TestHash(t *testing.T) {
	const hello = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got := Hash([]byte("hello")); got != hello {
		t.Errorf("Hash(hello) = %s, want %s", got, hello)
	}
	if Hash([]byte("world")) == hello {
		t.Error("different inputs should produce different hashes")
	}
}

func TestHashKey(t *testing.T) {
	k := hashKey("solution", "img", 32)
	if !strings.HasPrefix(k, "solution:") || len(k) != len("solution:")+64 {
		t.Errorf("hashKey = %q", k)
	}
	if k == hashKey("solution", "img", 16) {
		t.Error("parts must change the key")
	}
	if k == "solution:"+Hash([]byte(`["img",32]`+"\n")) {
		t.Error("key must include the version salt")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	base := SolutionKeyOpts{StripeWidth: 32, Metric: "rgb", Policy: "faithful"}

	sk1 := k.SolutionKey("img", base)
	if !strings.HasPrefix(sk1, "solution:") {
		t.Errorf("SolutionKey unexpected: %s", sk1)
	}
	if sk1 != k.SolutionKey("img", base) {
		t.Error("SolutionKey should be deterministic")
	}

	variants := []SolutionKeyOpts{
		{StripeWidth: 16, Metric: "rgb", Policy: "faithful"},
		{StripeWidth: 32, Metric: "lab", Policy: "faithful"},
		{StripeWidth: 32, Metric: "rgb", Policy: "corrected"},
		{StripeWidth: 32, Metric: "rgb", Policy: "faithful", IncludeAlpha: true},
	}
	for _, v := range variants {
		if k.SolutionKey("img", v) == sk1 {
			t.Errorf("SolutionKey(%+v) should differ from base", v)
		}
	}
	if k.SolutionKey("other", base) == sk1 {
		t.Error("different image hashes should produce different keys")
	}

	ak1 := k.ArtifactKey("sol", ArtifactKeyOpts{Format: "png"})
	ak2 := k.ArtifactKey("sol", ArtifactKeyOpts{Format: "jpeg"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "unshred:")

	opts := SolutionKeyOpts{StripeWidth: 32}
	if got, want := scoped.SolutionKey("img", opts), "unshred:"+inner.SolutionKey("img", opts); got != want {
		t.Errorf("ScopedKeyer SolutionKey = %s, want %s", got, want)
	}
	if got := scoped.ArtifactKey("sol", ArtifactKeyOpts{}); !strings.HasPrefix(got, "unshred:artifact:") {
		t.Errorf("ScopedKeyer ArtifactKey should be prefixed: %s", got)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.SolutionKey("img", SolutionKeyOpts{})
	if !strings.HasPrefix(key, "prefix:solution:") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond})
	if err == nil {
		t.Fatal("NewRedisCache should fail without a server")
	}
	if !strings.Contains(err.Error(), "redis ping") {
		t.Errorf("error should mention the ping: %v", err)
	}
}

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
	if err := classify(ErrNetwork); IsRetryable(err) {
		t.Error("plain errors should not become retryable")
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrNetwork)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}

	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	if IsRetryable(ErrCacheMiss) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func fastBackoff() Backoff {
	return Backoff{Attempts: 3, Initial: time.Millisecond, Max: 2 * time.Millisecond}
}

func TestBackoffRetry(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		failures  int
		retryable bool
		wantCalls int
		wantErr   bool
	}{
		{"first try succeeds", 0, true, 1, false},
		{"non-retryable stops", 5, false, 1, true},
		{"succeeds after retry", 1, true, 2, false},
		{"attempts exhausted", 5, true, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := fastBackoff().Retry(ctx, func() error {
				calls++
				if calls <= tt.failures {
					if tt.retryable {
						return Retryable(ErrNetwork)
					}
					return ErrCacheMiss
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("Retry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestBackoffZeroAttemptsCallsOnce(t *testing.T) {
	calls := 0
	_ = Backoff{}.Retry(context.Background(), func() error {
		calls++
		return Retryable(ErrNetwork)
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Backoff{Attempts: 3, Initial: time.Hour}.Retry(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Retry() = %v, want context.Canceled", err)
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	payload := []byte("order")
	if err := c.Set(ctx, "solution:a", payload, time.Minute); err != nil {
		t.Fatal(err)
	}
	payload[0] = 'X'

	data, hit, err := c.Get(ctx, "solution:a")
	if err != nil || !hit || string(data) != "order" {
		t.Fatalf("Get = %q, %v, %v; want a stored copy", data, hit, err)
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "solution:a"); hit {
		t.Error("expired entry should miss")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be dropped, Len = %d", c.Len())
	}

	_ = c.Set(ctx, "artifact:b", []byte("png"), 0)
	_ = c.Delete(ctx, "artifact:b")
	if _, hit, _ := c.Get(ctx, "artifact:b"); hit {
		t.Error("deleted entry should miss")
	}

	_ = c.Set(ctx, "artifact:c", []byte("png"), 0)
	_ = c.Close()
	if c.Len() != 0 {
		t.Error("Close should drop entries")
	}
}
