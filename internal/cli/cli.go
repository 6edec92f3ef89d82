// Package cli implements the unshred command-line interface.
//
// The CLI reconstructs shredded images, renders the stripe adjacency graph,
// browses the per-start candidates, serves the HTTP API and manages the
// solution cache and run history. It is built on cobra; output is styled
// with lipgloss and logged through charmbracelet/log.
//
// # Commands
//
//   - solve: reconstruct an image and write unshredded-<name>.png
//   - graph: render the best-neighbor graph as DOT, SVG or PNG
//   - inspect: browse candidates sorted by cost
//   - serve: run the HTTP API
//   - runs: list, show and delete recorded runs
//   - cache: clear or locate the solution cache
//   - config: show the effective configuration
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// prints the per-start candidate trace and registers logging hooks for the
// pipeline, cache and HTTP layers.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/unshred/pkg/buildinfo"
	"github.com/matzehuels/unshred/pkg/cache"
	"github.com/matzehuels/unshred/pkg/config"
	"github.com/matzehuels/unshred/pkg/observability"
	"github.com/matzehuels/unshred/pkg/pipeline"
	"github.com/matzehuels/unshred/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "unshred"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is set by the persistent --config flag.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the logging hooks
// are registered so every pipeline stage, cache lookup and request is traced.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level > log.DebugLevel {
		observability.Reset()
		return
	}
	hooks := observability.NewLogHooks(c.Logger)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Unshred reassembles images cut into vertical stripes",
		Long:          `Unshred reconstructs an image that was cut into equal-width vertical stripes and shuffled, by chaining each stripe to the neighbor whose edge pixels match best.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/unshred/config.toml)")

	root.AddCommand(c.solveCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.runsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the --config file, or the default path if it exists.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// =============================================================================
// Factories
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	cc, err := newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.KeyPrefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.KeyPrefix)
	}
	runner := pipeline.NewRunner(cc, keyer, c.Logger)
	runner.TTL = cfg.Cache.TTL.Duration
	return runner, nil
}

func newCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Backend == config.BackendNone {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.BackendMemory:
		return cache.NewMemoryCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err != nil {
			return nil, err
		}
		return rc, nil
	}

	dir, err := fileCacheDir(cfg)
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// newStore opens the configured run store. It returns nil when recording
// is disabled.
func newStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendNone:
		return nil, nil
	case config.BackendMongo:
		ms, err := store.NewMongoStore(ctx, store.MongoConfig{URI: cfg.MongoURI, Database: cfg.Database})
		if err != nil {
			return nil, err
		}
		return ms, nil
	}
	fs, err := store.NewFileStore(cfg.Dir)
	if err != nil {
		return nil, err
	}
	return fs, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/unshred/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
