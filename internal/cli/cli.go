// Package cli implements the datamaps command-line interface.
//
// The CLI draws maps from TOML or JSON configuration files, serves them over
// HTTP and manages the local fetch cache. It is built using cobra and logs
// through charmbracelet/log.
//
// # Commands
//
//   - render: Draw a map configuration to SVG, PNG, JPEG or PDF
//   - serve: Run the HTTP API
//   - scopes: List the embedded topologies and their region ids
//   - cache: Manage the fetch cache
//   - completion: Generate shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// routes draw, layer, cache and fetch events through the observability hooks.
// Loggers are passed through context.Context.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/datamaps/pkg/cache"
	"github.com/matzehuels/datamaps/pkg/errors"
	"github.com/matzehuels/datamaps/pkg/export"
	"github.com/matzehuels/datamaps/pkg/fetch"
)

// appName is the application name used for directories and display.
const appName = "datamaps"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

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

// newFetcher creates the fetch client used for remote topologies and
// overlay datasets, backed by the file cache unless noCache is set.
func newFetcher(noCache bool) (*fetch.Client, error) {
	store, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return fetch.NewClient(store), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newConverter picks the raster converter: "chrome" or "rsvg".
func newConverter(name, chromePath string) (export.Converter, error) {
	switch name {
	case "", "chrome":
		var opts []export.ChromeOption
		if chromePath != "" {
			opts = append(opts, export.WithExecPath(chromePath))
		}
		if os.Getenv("DATAMAPS_NO_SANDBOX") != "" {
			opts = append(opts, export.WithNoSandbox())
		}
		return export.NewChrome(opts...), nil
	case "rsvg":
		return export.RSVG{}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown exporter %q (want chrome or rsvg)", name)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/datamaps/).
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
