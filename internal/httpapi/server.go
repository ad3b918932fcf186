// Package httpapi exposes scoring and the artifact store over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/huangsam/mlscore/core"
	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/internal/harvest"
)

// shutdownTimeout bounds the graceful shutdown of the listener.
const shutdownTimeout = 10 * time.Second

// Server routes the artifact API onto a gin engine.
type Server struct {
	cfg    *contract.Config
	scorer *core.ArtifactManager
	mgr    contract.StoreManager
	logger *log.Logger
	router *gin.Engine
}

// NewServer builds the router. The scorer is injected so tests can replace
// the upstream harvesters; logger may be nil.
func NewServer(cfg *contract.Config, scorer *core.ArtifactManager, mgr contract.StoreManager, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{cfg: cfg, scorer: scorer, mgr: mgr, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))
	r.Use(s.requestLogger())

	r.GET("/health", s.handleHealth)
	artifacts := r.Group("/artifacts")
	{
		artifacts.POST("", s.handleScore)
		artifacts.GET("", s.handleList)
		artifacts.POST("/byregex", s.handleByRegex)
		artifacts.GET("/:id", s.handleGet)
		artifacts.GET("/:id/rate", s.handleRate)
		artifacts.DELETE("/:id", s.handleDelete)
	}

	s.router = r
	return s
}

// Handler returns the router for use with httptest or a custom listener.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Start wires the production pipeline and serves on cfg.Listen.
func Start(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	gin.SetMode(gin.ReleaseMode)
	scorer := core.NewPipeline(cfg, mgr, harvest.Endpoints{})
	addr := cfg.Listen
	if addr == "" {
		addr = contract.DefaultListen
	}
	return NewServer(cfg, scorer, mgr, contract.LoggerFrom(ctx)).ListenAndServe(ctx, addr)
}

// requestLogger logs one debug line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).Round(time.Microsecond))
	}
}
