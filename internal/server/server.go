// Package server exposes agreement generation over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-dealdoc"
)

// Sentinel errors for server lifecycle.
var (
	ErrListen   = errors.New("failed to listen")
	ErrShutdown = errors.New("server shutdown incomplete")
)

const (
	// maxBodyBytes bounds a deal request; four short strings fit easily.
	maxBodyBytes = 64 << 10

	defaultShutdownTimeout = 30 * time.Second
	defaultRequestTimeout  = 60 * time.Second
)

// Generator is the part of *dealdoc.Generator the server needs.
type Generator interface {
	GenerateFacilityAgreement(ctx context.Context, deal dealdoc.DealInfo, d dealdoc.Deliverer) error
	Templates() ([]string, error)
}

// Config holds HTTP server settings. Zero values select defaults.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server routes agreement requests to a Generator.
type Server struct {
	cfg    Config
	gen    Generator
	logger *zap.Logger
	router chi.Router
}

// New creates a Server. A nil logger disables request logging.
func New(gen Generator, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	s := &Server{cfg: cfg, gen: gen, logger: logger}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(defaultRequestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/templates", s.handleListTemplates)
		r.Post("/facility-agreements", s.handleGenerate)
	})

	s.router = r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe binds cfg.Addr and serves until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrListen, s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled, then shuts down
// gracefully, letting in-flight generations finish within
// cfg.ShutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("server shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%w: %v", ErrShutdown, err)
		}
		return nil
	})

	err := g.Wait()
	s.logger.Info("server stopped")
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTemplates(w http.ResponseWriter, _ *http.Request) {
	names, err := s.gen.Templates()
	if err != nil {
		s.logger.Error("listing templates", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"templates": names})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var deal dealdoc.DealInfo
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&deal); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Exactly one JSON value is allowed; trailing whitespace is fine.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rd := &responseDelivery{w: w}
	err := s.gen.GenerateFacilityAgreement(r.Context(), deal, rd)
	if err == nil {
		return
	}
	// The generator has logged the cause. Headers may already be out if the
	// failure happened mid-body; nothing more can be sent then.
	if rd.started {
		return
	}
	respondError(w, http.StatusInternalServerError, dealdoc.ErrGenerationFailed.Error())
}

// responseDelivery writes the document as an attachment.
type responseDelivery struct {
	w       http.ResponseWriter
	started bool
}

func (d *responseDelivery) Deliver(_ context.Context, doc *dealdoc.Document) error {
	if doc == nil {
		return dealdoc.ErrNilDocument
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename})
	if disposition == "" {
		disposition = "attachment"
	}

	h := d.w.Header()
	h.Set("Content-Type", doc.MIMEType)
	h.Set("Content-Disposition", disposition)
	h.Set("Content-Length", strconv.Itoa(len(doc.Data)))
	h.Set("X-Generation-Id", doc.GenerationID)

	d.started = true
	d.w.WriteHeader(http.StatusOK)
	if _, err := d.w.Write(doc.Data); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	return nil
}

// logRequests logs one line per request once the handler returns.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			s.logger.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
