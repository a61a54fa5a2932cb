// Package server exposes map rendering over HTTP.
//
// Routes:
//
//	GET    /healthz                 liveness and build version
//	GET    /v1/scopes               embedded topology scopes
//	GET    /v1/maps/{scope}.{fmt}   render a bare scope (width, projection, graticule, labels query params)
//	POST   /v1/maps                 save a map definition
//	GET    /v1/maps                 list saved definitions
//	GET    /v1/maps/{id}[.{fmt}]    render a saved definition
//	GET    /v1/maps/{id}/config     the saved definition itself
//	DELETE /v1/maps/{id}            remove a saved definition
//
// Rendered documents are cached under [cache.Keyer.RenderKey], so replicas
// sharing a Redis cache render each configuration once per TTL.
//
// Configurations come from clients, so remote topologies and overlay datasets
// (geographyConfig.dataUrl, dataUrl) are refused unless their host is listed
// with [WithRemoteHosts]. Listed hosts must still resolve to public addresses.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/datamaps/pkg/cache"
	"github.com/matzehuels/datamaps/pkg/datamaps"
	dmerrors "github.com/matzehuels/datamaps/pkg/errors"
	"github.com/matzehuels/datamaps/pkg/export"
	"github.com/matzehuels/datamaps/pkg/fetch"
	"github.com/matzehuels/datamaps/pkg/store"
)

// DefaultRenderTTL is how long rendered documents stay cached.
const DefaultRenderTTL = time.Hour

// maxBodyBytes caps POST bodies.
const maxBodyBytes = 1 << 20

// Server serves rendered maps and saved definitions.
type Server struct {
	store     store.Store
	cache     cache.Cache
	keyer     cache.Keyer
	fetcher   datamaps.Fetcher
	converter export.Converter
	logger    *log.Logger
	ttl       time.Duration
	hosts     []string
	router    chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithCache sets the render cache. Defaults to [cache.NullCache].
func WithCache(c cache.Cache) Option { return func(s *Server) { s.cache = c } }

// WithKeyer sets the cache key layout.
func WithKeyer(k cache.Keyer) Option { return func(s *Server) { s.keyer = k } }

// WithFetcher sets the fetcher used for remote topologies and overlays.
// Defaults to a [fetch.Client] over the render cache that only reaches the
// hosts given to [WithRemoteHosts].
func WithFetcher(f datamaps.Fetcher) Option { return func(s *Server) { s.fetcher = f } }

// WithRemoteHosts allows map configurations to load remote documents from
// the given hosts. It has no effect when a fetcher is set with [WithFetcher].
func WithRemoteHosts(hosts ...string) Option {
	return func(s *Server) { s.hosts = append(s.hosts, hosts...) }
}

// WithConverter enables raster output. Without one only SVG is served.
func WithConverter(c export.Converter) Option { return func(s *Server) { s.converter = c } }

// WithLogger sets the request and render logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithRenderTTL sets the cache lifetime of rendered documents.
func WithRenderTTL(d time.Duration) Option { return func(s *Server) { s.ttl = d } }

// New creates a server over st.
func New(st store.Store, opts ...Option) (*Server, error) {
	if st == nil {
		return nil, dmerrors.New(dmerrors.ErrCodeMissingCollaborator, "server requires a definition store")
	}
	s := &Server{store: st, ttl: DefaultRenderTTL}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.NewNullCache()
	}
	if s.keyer == nil {
		s.keyer = cache.NewDefaultKeyer()
	}
	if s.fetcher == nil {
		s.fetcher = fetch.NewClient(s.cache,
			fetch.WithKeyer(s.keyer),
			fetch.WithAllowedHosts(s.hosts...),
			fetch.WithPublicOnly())
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/scopes", s.handleScopes)
		r.Route("/maps", func(r chi.Router) {
			r.Get("/", s.handleList)
			r.Post("/", s.handleSave)
			r.Get("/{ref}", s.handleRender)
			r.Get("/{ref}/config", s.handleConfig)
			r.Delete("/{ref}", s.handleDelete)
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
