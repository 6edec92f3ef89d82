// Package config loads unshred settings from TOML or YAML files.
//
// The format follows the file extension: ".toml" is decoded with
// BurntSushi/toml, ".yaml" and ".yml" with gopkg.in/yaml.v3. A missing file
// at the default path is not an error; defaults apply. CLI flags override
// whatever the file sets.
//
// Example config.toml:
//
//	stripe_width = 32
//	policy = "corrected"
//	metric = "lab"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/unshred/pkg/core/score"
	"github.com/matzehuels/unshred/pkg/core/sequence"
	"github.com/matzehuels/unshred/pkg/core/stripe"
	"github.com/matzehuels/unshred/pkg/errors"
	"github.com/matzehuels/unshred/pkg/imageio"
)

// Backend names.
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is the full settings tree.
type Config struct {
	StripeWidth  int    `toml:"stripe_width" yaml:"stripe_width"`
	Policy       string `toml:"policy" yaml:"policy"`
	Metric       string `toml:"metric" yaml:"metric"`
	IncludeAlpha bool   `toml:"include_alpha" yaml:"include_alpha"`
	Workers      int    `toml:"workers" yaml:"workers"`
	Format       string `toml:"format" yaml:"format"`

	Cache  CacheConfig  `toml:"cache" yaml:"cache"`
	Store  StoreConfig  `toml:"store" yaml:"store"`
	Server ServerConfig `toml:"server" yaml:"server"`
}

// CacheConfig selects the solution cache.
type CacheConfig struct {
	Backend   string   `toml:"backend" yaml:"backend"`
	Dir       string   `toml:"dir" yaml:"dir"`
	RedisAddr string   `toml:"redis_addr" yaml:"redis_addr"`
	RedisDB   int      `toml:"redis_db" yaml:"redis_db"`
	TTL       Duration `toml:"ttl" yaml:"ttl"`
	// KeyPrefix namespaces keys in a shared Redis, e.g. "unshred:".
	KeyPrefix string `toml:"key_prefix" yaml:"key_prefix"`
}

// StoreConfig selects where runs are recorded.
type StoreConfig struct {
	Backend  string `toml:"backend" yaml:"backend"`
	Dir      string `toml:"dir" yaml:"dir"`
	MongoURI string `toml:"mongo_uri" yaml:"mongo_uri"`
	Database string `toml:"database" yaml:"database"`
}

// ServerConfig configures `unshred serve`.
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
	// MaxUploadMB caps request bodies on POST /v1/unshred.
	MaxUploadMB int `toml:"max_upload_mb" yaml:"max_upload_mb"`
}

// Duration is a time.Duration that decodes from strings like "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalYAML decodes a scalar duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// MarshalYAML encodes the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		StripeWidth: stripe.DefaultWidth,
		Policy:      string(sequence.DefaultPolicy),
		Metric:      string(score.MetricRGB),
		Format:      imageio.FormatPNG,
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     Duration{7 * 24 * time.Hour},
		},
		Store: StoreConfig{
			Backend:  BackendFile,
			Database: "unshred",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			MaxUploadMB: 32,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/unshred/config.toml, falling back to
// ~/.config/unshred/config.toml.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "unshred", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "unshred", "config.toml"), nil
}

// Load reads path over the defaults and validates the result.
// An empty path loads DefaultPath and tolerates its absence; an explicit
// path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	if err := decode(path, data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return errors.Configuration("unsupported config format %q (use .toml, .yaml or .yml)", ext)
	}
	return nil
}

// Validate checks every field that has a closed set of values.
func (c Config) Validate() error {
	if c.StripeWidth <= 0 {
		return errors.Configuration("stripe_width must be positive, got %d", c.StripeWidth)
	}
	if _, err := sequence.ParsePolicy(c.Policy); err != nil {
		return err
	}
	if _, err := score.ParseMetric(c.Metric); err != nil {
		return err
	}
	if c.Workers < 0 {
		return errors.Configuration("workers must not be negative, got %d", c.Workers)
	}
	if err := imageio.ValidateFormat(c.Format); err != nil {
		return errors.Configuration("format: %v", errors.UserMessage(err))
	}

	switch c.Cache.Backend {
	case BackendNone, BackendFile, BackendMemory:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.Configuration("cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.Configuration("unknown cache backend %q (must be one of: none, file, memory, redis)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.Configuration("cache.ttl must not be negative")
	}

	switch c.Store.Backend {
	case BackendNone, BackendFile:
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return errors.Configuration("store.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.Configuration("unknown store backend %q (must be one of: none, file, mongo)", c.Store.Backend)
	}

	if c.Server.MaxUploadMB <= 0 {
		return errors.Configuration("server.max_upload_mb must be positive")
	}
	return nil
}

// WriteTOML encodes c as TOML.
func (c Config) WriteTOML(buf *bytes.Buffer) error {
	return toml.NewEncoder(buf).Encode(c)
}

// WriteYAML encodes c as YAML.
func (c Config) WriteYAML(buf *bytes.Buffer) error {
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
