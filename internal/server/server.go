package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quillsign/quillsign/internal/config"
	"github.com/quillsign/quillsign/internal/event"
	"github.com/quillsign/quillsign/internal/metrics"
	"github.com/quillsign/quillsign/internal/server/handlers"
	custommiddleware "github.com/quillsign/quillsign/internal/server/middleware"
	"github.com/quillsign/quillsign/internal/store"
	"github.com/quillsign/quillsign/internal/version"
	"github.com/quillsign/quillsign/internal/viewer"
	"github.com/quillsign/quillsign/internal/workflow"
)

type Server struct {
	config    *config.ServerEnvironment
	logger    *slog.Logger
	router    *chi.Mux
	store     *store.Store
	engine    *workflow.Engine
	loader    *viewer.Loader
	publisher event.Publisher
	metrics   *metrics.Metrics
}

func NewServer(
	cfg *config.ServerEnvironment,
	logger *slog.Logger,
	documentStore *store.Store,
	engine *workflow.Engine,
	publisher event.Publisher,
) (*Server, error) {
	if documentStore == nil || engine == nil {
		return nil, fmt.Errorf("server requires a document store and a workflow engine")
	}

	server := &Server{
		config:    cfg,
		logger:    logger,
		router:    chi.NewRouter(),
		store:     documentStore,
		engine:    engine,
		loader:    viewer.NewLoader(logger),
		publisher: publisher,
		metrics:   metrics.New(),
	}

	server.setupMiddleware()
	server.registerRoutes()

	return server, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(custommiddleware.RequestLogging(s.logger, s.metrics))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.Timeout(60 * time.Second))
	s.router.Use(custommiddleware.SecurityHeaders(s.config.Environment))
	s.router.Use(custommiddleware.RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst))
}

func (s *Server) registerRoutes() {
	s.router.Get("/health/live", handlers.HandleHealth)
	s.router.Get("/health/ready", handlers.HandleReadiness)

	v := version.Get()
	s.router.Get("/version", handlers.HandleVersion(v.Version, v.BuildDate))
	s.router.Method("GET", "/metrics", promhttp.Handler())

	s.router.Route("/v1", func(r chi.Router) {
		// document uploads carry file content, everything else stays small
		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.RequestSizeLimit(s.config.MaxUploadBytes))
			r.Post("/documents", s.handleCreateDocument)
			r.Post("/documents/import", s.handleImportDocument)
		})

		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.RequestSizeLimit(1 << 20))

			r.Get("/documents", s.handleListDocuments)
			r.Get("/documents/{documentID}", s.handleGetDocument)
			r.Patch("/documents/{documentID}", s.handleUpdateDocument)
			r.Delete("/documents/{documentID}", s.handleDeleteDocument)
			r.Post("/documents/{documentID}/duplicate", s.handleDuplicateDocument)
			r.Get("/documents/{documentID}/export", s.handleExportDocument)
			r.Get("/documents/{documentID}/render", s.handleRenderDocument)

			r.Post("/documents/{documentID}/fields", s.handleAddField)
			r.Patch("/documents/{documentID}/fields/{fieldID}", s.handleUpdateField)
			r.Delete("/documents/{documentID}/fields/{fieldID}", s.handleDeleteField)

			r.Post("/documents/{documentID}/signers", s.handleAddSigner)
			r.Patch("/documents/{documentID}/signers/{signerID}", s.handleUpdateSigner)
			r.Delete("/documents/{documentID}/signers/{signerID}", s.handleRemoveSigner)

			r.Post("/documents/{documentID}/send", s.handleSendDocument)
			r.Post("/documents/{documentID}/fields/{fieldID}/value", s.handleFillField)
			r.Post("/documents/{documentID}/signers/{signerID}/complete", s.handleSignerCompletion)
			r.Post("/documents/{documentID}/signers/{signerID}/decline", s.handleDecline)
			r.Post("/documents/{documentID}/void", s.handleVoidDocument)
			r.Get("/documents/{documentID}/progress", s.handleProgress)
		})
	})
}

func (s *Server) Start(ctx context.Context) error {
	serverAddr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	httpServer := &http.Server{
		Addr:         serverAddr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("service listening",
			slog.String("environment", s.config.Environment),
			slog.String("address", serverAddr))

		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.config.ServerShutdownTimeout)
	defer shutdownCancel()

	s.logger.Info("shutting down HTTP server")

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		s.logger.Warn("HTTP server shutdown error",
			slog.String("error", err.Error()))
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			s.logger.Warn("event publisher shutdown error",
				slog.String("error", err.Error()))
		}
	}

	s.logger.Info("HTTP server shutdown complete")
	return nil
}

// Router exposes the configured router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
