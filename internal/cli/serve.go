package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/datamaps/pkg/cache"
	"github.com/matzehuels/datamaps/pkg/server"
	"github.com/matzehuels/datamaps/pkg/store"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr       string
	redisURL   string // shared render cache; the file cache is used when empty
	mongoURI   string // saved definitions; kept in memory when empty
	mongoDB    string
	exporter   string // chrome, rsvg or none
	chromePath string
	ttl        time.Duration
	keyPrefix  string
	allowHosts []string // hosts configurations may load remote documents from
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:     ":8080",
		mongoDB:  appName,
		exporter: "none",
		ttl:      server.DefaultRenderTTL,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve rendered maps and saved map definitions over HTTP.

Rendered documents are cached in Redis (--redis) or in the local cache
directory. Saved definitions live in MongoDB (--mongo) or in memory.

Configurations may only load remote topologies and overlay datasets from
hosts given with --allow-host, and only over public addresses.`,
		Example: `  datamaps serve
  datamaps serve --addr :9000 --redis redis://localhost:6379/0 --mongo mongodb://localhost:27017
  datamaps serve --allow-host cdn.jsdelivr.net
  curl localhost:8080/v1/maps/usa.svg?labels=true`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "Redis URL for the shared render cache")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo", "", "MongoDB URI for saved map definitions")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", opts.mongoDB, "MongoDB database name")
	cmd.Flags().StringVar(&opts.exporter, "exporter", opts.exporter, "raster exporter: chrome, rsvg, none")
	cmd.Flags().StringVar(&opts.chromePath, "chrome-path", "", "Chrome or Chromium binary for the chrome exporter")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", opts.ttl, "render cache lifetime")
	cmd.Flags().StringVar(&opts.keyPrefix, "key-prefix", "", "prefix for cache keys shared with other deployments")
	cmd.Flags().StringSliceVar(&opts.allowHosts, "allow-host", nil, "host that map configurations may load dataUrl documents from (repeatable)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	var renderCache cache.Cache
	if opts.redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, opts.redisURL)
		if err != nil {
			return err
		}
		renderCache = rc
		logger.Info("using redis cache")
	} else {
		fc, err := newCache(false)
		if err != nil {
			return err
		}
		renderCache = fc
	}
	defer renderCache.Close()

	var defs store.Store = store.NewMemoryStore()
	if opts.mongoURI != "" {
		ms, err := store.NewMongoStore(ctx, opts.mongoURI, opts.mongoDB)
		if err != nil {
			return err
		}
		defs = ms
		logger.Info("using mongo store", "database", opts.mongoDB)
	}
	defer defs.Close()

	keyer := cache.NewDefaultKeyer()
	if opts.keyPrefix != "" {
		keyer = cache.NewScopedKeyer(keyer, opts.keyPrefix)
	}

	serverOpts := []server.Option{
		server.WithCache(renderCache),
		server.WithKeyer(keyer),
		server.WithLogger(logger),
		server.WithRenderTTL(opts.ttl),
		server.WithRemoteHosts(opts.allowHosts...),
	}
	if opts.exporter != "none" {
		conv, err := newConverter(opts.exporter, opts.chromePath)
		if err != nil {
			return err
		}
		serverOpts = append(serverOpts, server.WithConverter(conv))
	}

	srv, err := server.New(defs, serverOpts...)
	if err != nil {
		return err
	}
	printSuccess("Serving on %s", StyleHighlight.Render(opts.addr))
	return srv.ListenAndServe(ctx, opts.addr)
}
