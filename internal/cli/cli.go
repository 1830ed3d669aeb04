// Package cli implements the respimg command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/respimg/pkg/buildinfo"
	"github.com/matzehuels/respimg/pkg/cache"
	sectionio "github.com/matzehuels/respimg/pkg/io"
	"github.com/matzehuels/respimg/pkg/plugin"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "respimg"

	// redisAddrEnv provides the default for --redis.
	redisAddrEnv = "RESPIMG_REDIS_ADDR"

	// defaultSizes is the host sizes string used when --default is not given.
	defaultSizes = "100vw, 1024px"
)

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
	Out    io.Writer // Command output; logs go to Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "respimg computes section-aware sizes attributes for responsive images",
		Long:         `respimg reads layout section definitions and turns a host's default sizes attribute into one that matches the width an image actually occupies inside each section.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.Out)

	root.AddCommand(c.validateCommand())
	root.AddCommand(c.sectionsCommand())
	root.AddCommand(c.sizesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Plugin Factory
// =============================================================================

// loadPlugin creates a plugin over the given section files and runs setup.
// Invalid definitions are skipped and, with --verbose, reported as
// diagnostics; an unreadable file is an error.
func (c *CLI) loadPlugin(ctx context.Context, paths []string, opts plugin.Options) (*plugin.Plugin, error) {
	if opts.Logger == nil {
		opts.Logger = c.Logger
	}
	if c.Logger.GetLevel() <= log.DebugLevel {
		opts.Debug = true
	}
	src := sectionio.NewFileSource(paths...)
	src.Logger = opts.Logger
	opts.Source = src

	p := plugin.New(opts)
	if err := p.Setup(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// cacheOptions selects the backend for generated expressions.
type cacheOptions struct {
	noCache   bool
	redisAddr string
}

// newCache opens the configured cache. Without Redis the file cache under
// cacheDir is used; if no cache directory can be determined, caching is off.
func (c *CLI) newCache(ctx context.Context, opts cacheOptions) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: opts.redisAddr, Prefix: appName + ":"})
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using redis cache", "addr", opts.redisAddr)
		return rc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/respimg/).
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

