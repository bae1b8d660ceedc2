// Package cli implements the paygraph command-line interface.
//
// This package provides commands for serving the spending API, exploring the
// payment graph interactively in the terminal, exporting settled layouts to
// files, and managing the payload cache. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - serve: Run the HTTP API over a payment store
//   - view: Explore the payment graph interactively in the terminal
//   - export: Render a settled layout to SVG, DOT, or JSON
//   - cache: Manage the payload cache
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/spendwatch/paygraph/pkg/buildinfo"
	"github.com/spendwatch/paygraph/pkg/cache"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "paygraph"

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
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Paygraph visualizes public spending as a force-directed graph",
		Long:         `Paygraph aggregates payments between organizations and contractors into a weighted graph, lays it out with a force-directed simulation, and lets you explore or export the result.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache builds the payload cache from config: Redis when an address is
// configured (scoped so deployments sharing a server don't collide), files
// otherwise. Cache failures degrade to a no-op cache rather than failing the
// command.
func (c *CLI) newCache(cfg Config, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}

	if cfg.Cache.RedisAddr != "" {
		rc, err := cache.NewRedisCache(context.Background(), cfg.Cache.RedisAddr)
		if err == nil {
			return cache.NewScopedCache(rc, appName)
		}
		c.Logger.Warn("redis cache unavailable, falling back to files",
			"addr", cfg.Cache.RedisAddr, "err", err)
	}

	dir := cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache()
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/paygraph/).
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
