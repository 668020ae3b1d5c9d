package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers the tree API on r.
func RegisterRoutes(r gin.IRouter, h *Handlers) {
	r.GET("/search/:phrase", h.HandleSearch)
	r.GET("/dat/:nodeID", h.HandleExpand)
	r.POST("/similar", h.HandleSimilar)
	r.POST("/parents", h.HandleParents)
	r.POST("/related", h.HandleRelated)
	r.POST("/reload", h.HandleReload)
	r.GET("/health", h.HandleHealth)
	r.GET("/stats", h.HandleStats)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// NewRouter builds the gin engine: recovery, request metrics, the API
// routes and, when publicDir is set, the front-end's static files for every
// other path.
func NewRouter(h *Handlers, publicDir string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestMetrics())
	RegisterRoutes(r, h)
	if publicDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(publicDir))))
	}
	return r
}

// Server runs the HTTP listener.
type Server struct {
	http            *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// New creates a Server listening on addr.
func New(addr string, handler http.Handler, shutdownTimeout time.Duration, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
