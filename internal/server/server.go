// Package server exposes one map document over an HTTP JSON API.
//
// The server is the HTTP face of the same explorer session the terminal
// browser drives: one document, one navigation state, one edit surface.
// Handlers serialize on a mutex because sessions are single-operator;
// graphs themselves are immutable, so snapshots taken under the lock stay
// valid after it is released.
//
// # Endpoints
//
//	GET    /healthz                          liveness and version
//	GET    /api/v1/document                  export the current document
//	PUT    /api/v1/document                  replace the document wholesale
//	GET    /api/v1/maps                      map summaries and the root
//	GET    /api/v1/maps/{id}                 one map with its hotspots
//	POST   /api/v1/maps/{id}/hotspots        add a hotspot
//	PATCH  /api/v1/maps/{id}/hotspots/{hid}  partially update a hotspot
//	DELETE /api/v1/maps/{id}/hotspots/{hid}  delete a hotspot (sweeps orphans)
//	PUT    /api/v1/maps/{id}/image           change a map's background image
//	GET    /api/v1/frame                     current presentation frame
//	POST   /api/v1/navigate/{id}             descend into a map
//	POST   /api/v1/navigate/back             pop the history stack
//	GET    /api/v1/graph.svg|.dot            rendered overview
//	GET    /api/v1/docs                      list stored documents
//	GET    /api/v1/docs/{name}               fetch a stored document
//	PUT    /api/v1/docs/{name}               store a document (empty body
//	                                         snapshots the live one)
//	DELETE /api/v1/docs/{name}               delete a stored document
//
// The docs routes are mounted only when a store is configured. Errors
// carry a JSON body with the message and machine-readable code; statuses
// follow the code class (validation 422, not found 404, conflicts 409,
// store failures 502).
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/atlas/pkg/docstore"
	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/mapgraph"
	"github.com/matzehuels/atlas/pkg/render"
	"github.com/matzehuels/atlas/pkg/session"
)

// shutdownTimeout bounds the drain of in-flight requests on stop.
const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	// Graph is the initial document. Required.
	Graph *mapgraph.Graph

	// Source labels where the document came from, for logs.
	Source string

	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Store backs the /api/v1/docs routes. Nil leaves them unmounted.
	Store docstore.Store

	// Renderer produces the overview endpoints. Nil rejects them.
	Renderer *render.Renderer

	// Logger defaults to log.Default().
	Logger *log.Logger
}

// Server serves one explorer session over HTTP.
type Server struct {
	mu       sync.Mutex
	sess     *session.Session
	store    docstore.Store
	renderer *render.Renderer
	logger   *log.Logger
	source   string
	addr     string
}

// New builds a server and the session it wraps. The session starts at
// the document's inferred root.
func New(opts Options) (*Server, error) {
	if opts.Graph == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "server requires a document graph")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	sess, err := session.New(opts.Graph, "", logger)
	if err != nil {
		return nil, err
	}
	return &Server{
		sess:     sess,
		store:    opts.Store,
		renderer: opts.Renderer,
		logger:   logger,
		source:   opts.Source,
		addr:     opts.Addr,
	}, nil
}

// Handler builds the router. Split out from Run so tests can drive the
// API without a listener.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/document", s.handleGetDocument)
		r.Put("/document", s.handlePutDocument)

		r.Get("/maps", s.handleListMaps)
		r.Get("/maps/{id}", s.handleGetMap)
		r.Post("/maps/{id}/hotspots", s.handleAddHotspot)
		r.Patch("/maps/{id}/hotspots/{hid}", s.handleUpdateHotspot)
		r.Delete("/maps/{id}/hotspots/{hid}", s.handleDeleteHotspot)
		r.Put("/maps/{id}/image", s.handleSetImage)

		r.Get("/frame", s.handleFrame)
		r.Post("/navigate/{id}", s.handleNavigate)
		r.Post("/navigate/back", s.handleNavigateBack)

		r.Get("/graph.svg", s.handleRender(render.FormatSVG))
		r.Get("/graph.dot", s.handleRender(render.FormatDOT))

		if s.store != nil {
			r.Route("/docs", func(r chi.Router) {
				r.Get("/", s.handleListDocs)
				r.Get("/{name}", s.handleGetDoc)
				r.Put("/{name}", s.handlePutDoc)
				r.Delete("/{name}", s.handleDeleteDoc)
			})
		}
	})

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.addr, "source", s.source)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && err != http.ErrServerClosed {
			return errors.Wrap(errors.ErrCodeStore, err, "http server on %s", s.addr)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("http server draining")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// logRequests emits one key-value line per request at debug level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
	})
}
