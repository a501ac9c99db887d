// Package api serves the task engine over HTTP with gin.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Iron-Ham/taskstack/internal/breakdown"
	"github.com/Iron-Ham/taskstack/internal/config"
	"github.com/Iron-Ham/taskstack/internal/event"
	"github.com/Iron-Ham/taskstack/internal/lifecycle"
	"github.com/Iron-Ham/taskstack/internal/logging"
	"github.com/Iron-Ham/taskstack/internal/model"
	"github.com/Iron-Ham/taskstack/internal/scheduler"
	"github.com/Iron-Ham/taskstack/internal/service"
)

// Engine is the subset of *service.Service the handlers call.
type Engine interface {
	Capture(ctx context.Context, in breakdown.Input) (breakdown.Result, error)
	CaptureBatch(ctx context.Context, userID string, inputs []breakdown.Input) service.BatchResult
	Next(ctx context.Context, userID string) (*scheduler.Ranked, error)
	Queue(ctx context.Context, userID string, limit int) ([]scheduler.Ranked, error)
	Act(ctx context.Context, userID string, req lifecycle.Request) (service.ActionResult, error)
	Tasks(ctx context.Context, userID string) ([]service.TaskView, error)
	UpdateTask(ctx context.Context, id string, edit service.TaskEdit) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
	Events() *event.Bus
}

var _ Engine = (*service.Service)(nil)

// Server is the taskstack HTTP API
type Server struct {
	engine Engine
	logger *logging.Logger
	cfg    config.ServerConfig
	router *gin.Engine
}

// NewServer creates a server and registers its routes.
func NewServer(engine Engine, logger *logging.Logger, cfg config.ServerConfig) *Server {
	if logger == nil {
		logger = logging.NopLogger()
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	router := gin.New()
	s := &Server{
		engine: engine,
		logger: logger,
		cfg:    cfg,
		router: router,
	}

	router.Use(gin.Recovery(), s.requestLogger(), cors())

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/capture", s.handleCapture)
		api.POST("/capture/batch", s.handleCaptureBatch)
		api.GET("/next", s.handleNext)
		api.GET("/queue", s.handleQueue)
		api.POST("/action", s.handleAction)
		api.GET("/tasks", s.handleTasks)
		api.PUT("/tasks/:id", s.handleUpdateTask)
		api.DELETE("/tasks/:id", s.handleDeleteTask)
		api.GET("/templates", s.handleTemplates)
		api.GET("/events", s.handleEvents)
	}

	return s
}

// Handler returns the router for use with httptest or a custom server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully within the
// configured timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout()
	s.logger.Info("shutting down server", "timeout", timeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// requestLogger logs one line per request. Server errors log at WARN.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if status >= http.StatusInternalServerError {
			s.logger.Warn("request failed", args...)
			return
		}
		s.logger.Debug("request", args...)
	}
}

// cors allows browser clients on other origins during local development.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
