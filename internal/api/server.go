// Package api exposes the HTTP interface: job control, account and ledger
// CRUD, and monthly analytics.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nisioka/self-money/internal/common"
	"github.com/nisioka/self-money/internal/model"
	"github.com/nisioka/self-money/internal/service"
	"github.com/nisioka/self-money/internal/storage"
)

// Scheduler is the scheduling surface the API needs.
type Scheduler interface {
	TriggerNow(ctx context.Context) (*model.Job, error)
	CronExpression() string
}

// Server hosts the REST API.
type Server struct {
	store     service.Storage
	scheduler Scheduler
	logger    *slog.Logger
	engine    *gin.Engine
	http      *http.Server
}

// Config configures the HTTP server.
type Config struct {
	Addr string
}

// NewServer builds the server and registers all routes.
func NewServer(cfg Config, store service.Storage, scheduler Scheduler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		store:     store,
		scheduler: scheduler,
		logger:    logger,
		engine:    engine,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	s.registerRoutes()
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)

	api := s.engine.Group("/api")
	{
		api.POST("/jobs", s.handleCreateJob)
		api.POST("/jobs/sync", s.handleTriggerSync)
		api.GET("/jobs", s.handleListJobs)
		api.GET("/jobs/:id", s.handleGetJob)

		api.GET("/accounts", s.handleListAccounts)
		api.POST("/accounts", s.handleCreateAccount)
		api.GET("/accounts/:id", s.handleGetAccount)
		api.PUT("/accounts/:id", s.handleUpdateAccount)
		api.DELETE("/accounts/:id", s.handleDeleteAccount)

		api.GET("/transactions", s.handleListTransactions)
		api.POST("/transactions", s.handleCreateTransaction)
		api.PUT("/transactions/:id", s.handleUpdateTransaction)
		api.DELETE("/transactions/:id", s.handleDeleteTransaction)

		api.GET("/categories", s.handleListCategories)
		api.POST("/categories", s.handleCreateCategory)
		api.PUT("/categories/:id", s.handleUpdateCategory)
		api.DELETE("/categories/:id", s.handleDeleteCategory)

		api.GET("/rules", s.handleListRules)
		api.PUT("/rules", s.handleUpsertRule)
		api.DELETE("/rules/:id", s.handleDeleteRule)

		api.GET("/analytics/monthly", s.handleMonthlySummary)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// respondError maps storage sentinels to HTTP statuses.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrDuplicateEntry),
		errors.Is(err, common.ErrDuplicateExternalID),
		errors.Is(err, common.ErrHasTransactions),
		errors.Is(err, common.ErrCategoryInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrEmptyString),
		errors.Is(err, storage.ErrInvalidLimit),
		errors.Is(err, storage.ErrInvalidStatus),
		errors.Is(err, storage.ErrInvalidTransaction),
		errors.Is(err, storage.ErrInvalidAccountType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
