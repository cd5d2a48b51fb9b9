// Package server sets up the HTTP server with all routes
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/aashu2252/Fraud-Gaurd-AI/internal/cart"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/catalog"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/checkout"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/config"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/events"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/health"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/idgen"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/logging"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/metrics"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/payments"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/ratelimit"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/realtime"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/risk"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/security"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/traces"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/validation"
)

// Server wraps the HTTP server and its wired services.
type Server struct {
	cfg          *config.Config
	carts        *cart.Service
	checkout     *checkout.Service
	riskClient   *risk.Client
	audit        risk.AuditStore
	events       *events.Logger
	realtimeHub  *realtime.Hub
	rateLimiter  *ratelimit.Limiter
	healthReg    *health.Registry
	db           *sql.DB // nil if using in-memory
	router       *gin.Engine
	httpSrv      *http.Server
	logger       *slog.Logger
	traceStop    func(context.Context) error
	cancelRunCtx context.CancelFunc // cancels background goroutines started in Run

	// Health state
	ready   atomic.Bool
	healthy atomic.Bool
}

// Option configures the server
type Option func(*Server)

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a new server instance
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logging.New(cfg.LogLevel, "json"),
	}

	for _, opt := range opts {
		opt(s)
	}

	// Storage (Postgres if DATABASE_URL set, otherwise in-memory)
	var auditStore risk.AuditStore
	var orderStore checkout.OrderStore
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		s.db = db
		auditStore = risk.NewPostgresStore(db)
		orderStore = checkout.NewPostgresOrderStore(db)
		s.logger.Info("using PostgreSQL storage", "url", maskDSN(cfg.DatabaseURL))
	} else {
		auditStore = risk.NewMemoryStore()
		orderStore = checkout.NewMemoryOrderStore()
		s.logger.Info("using in-memory storage")
	}

	// Behavioral event logger, fire and forget toward the scoring service.
	s.events = events.NewLogger(cfg.RiskAPIURL, cfg.RiskTimeout, s.logger)

	// Risk assessment client with local fallback and audit trail.
	s.audit = auditStore
	s.riskClient = risk.NewClient(cfg.RiskAPIURL, cfg.RiskTimeout, s.logger).WithAudit(auditStore)

	// Payment processor: Stripe when configured, no-op otherwise.
	var processor payments.Processor
	if cfg.StripeAPIKey != "" {
		processor = payments.NewStripeProcessor(cfg.StripeAPIKey, s.logger)
		s.logger.Info("stripe payment processor enabled")
	} else {
		processor = payments.NoopProcessor{}
	}

	s.realtimeHub = realtime.NewHub(s.logger)

	s.carts = cart.NewService(cart.NewMemoryStore())
	s.checkout = checkout.NewService(
		s.carts,
		s.riskClient,
		orderStore,
		processor,
		s.events,
		&hubEmitter{hub: s.realtimeHub},
		s.logger,
	)

	// Health checks
	s.healthReg = health.NewRegistry()
	if s.db != nil {
		s.healthReg.Register("database", health.DBChecker(s.db))
	}
	s.healthReg.Register("scoring", health.UpstreamChecker("scoring", cfg.RiskAPIURL+"/health", nil))

	// Router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	s.router = gin.New()
	s.setupMiddleware()
	s.setupRoutes()

	s.healthy.Store(true)
	return s, nil
}

func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}

// hubEmitter bridges checkout lifecycle notifications onto the realtime hub.
type hubEmitter struct {
	hub *realtime.Hub
}

func (e *hubEmitter) AssessmentCompleted(userHash string, a *risk.Assessment) {
	e.hub.Notify(userHash, realtime.EventAssessmentCompleted, a)
}

func (e *hubEmitter) OrderPlaced(userHash string, order *checkout.Order) {
	e.hub.Notify(userHash, realtime.EventOrderPlaced, order)
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func (s *Server) setupMiddleware() {
	// Recovery with logging
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logging.L(c.Request.Context()).Error("panic recovered",
			"error", recovered,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "An unexpected error occurred",
		})
	}))

	// Security headers
	s.router.Use(security.HeadersMiddleware())

	// CORS (allow all origins for demo - restrict in production)
	s.router.Use(security.CORSMiddleware([]string{"*"}))

	// Request size limit (1MB)
	s.router.Use(validation.RequestSizeMiddleware(validation.MaxRequestSize))

	// Rate limiting
	s.rateLimiter = ratelimit.New(ratelimit.DefaultConfig())
	s.router.Use(s.rateLimiter.Middleware())

	// Prometheus metrics
	s.router.Use(metrics.Middleware())

	// Request ID
	s.router.Use(s.requestIDMiddleware())

	// Logging
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check for existing request ID (from load balancer, etc.)
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = idgen.Hex(16)
		}

		ctx := logging.WithRequestID(c.Request.Context(), requestID)
		ctx = logging.WithLogger(ctx, s.logger)
		c.Request = c.Request.WithContext(ctx)

		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger := logging.L(c.Request.Context())
		if hash := c.Param("hash"); hash != "" {
			logger = logger.With("shopper", logging.ShortHash(hash))
		}

		// Log level based on status code
		switch {
		case status >= 500:
			logger.Error("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
				"client_ip", c.ClientIP(),
			)
		case status >= 400:
			logger.Warn("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		default:
			logger.Info("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}
	}
}

// -----------------------------------------------------------------------------
// Routes
// -----------------------------------------------------------------------------

func (s *Server) setupRoutes() {
	// Health & metrics endpoints
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/healthz", s.livenessHandler)
	s.router.GET("/readyz", s.readinessHandler)
	s.router.GET("/metrics", metrics.Handler())

	// WebSocket for real-time checkout streaming, one socket per shopper
	s.router.GET("/ws/:hash", validation.HashParamMiddleware(), func(c *gin.Context) {
		s.realtimeHub.HandleWebSocket(c.Writer, c.Request, c.Param("hash"))
	})

	// Realtime hub stats (demo observability page feeds from this)
	s.router.GET("/ws-stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.realtimeHub.Stats())
	})

	v1 := s.router.Group("/v1")
	v1.Use(validation.HashParamMiddleware())

	catalogHandler := catalog.NewHandler(s.events)
	catalogHandler.RegisterRoutes(v1)

	cartHandler := cart.NewHandler(s.carts, s.events)
	// Editing the cart invalidates any in-flight checkout session.
	cartHandler.OnMutate(s.checkout.Invalidate)
	cartHandler.RegisterRoutes(v1)

	checkoutHandler := checkout.NewHandler(s.checkout)
	checkoutHandler.RegisterRoutes(v1)

	riskHandler := risk.NewHandler(s.riskClient, s.audit)
	riskHandler.RegisterRoutes(v1)
}

// -----------------------------------------------------------------------------
// Health handlers
// -----------------------------------------------------------------------------

func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	allHealthy, statuses := s.healthReg.CheckAll(ctx)

	// A down scoring service degrades to local fallback assessments, so it
	// never takes the whole service unhealthy on its own.
	status := "healthy"
	httpStatus := http.StatusOK
	if !allHealthy {
		status = "degraded"
		for _, st := range statuses {
			if !st.Healthy && st.Name != "scoring" {
				httpStatus = http.StatusServiceUnavailable
				break
			}
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"version":   "0.1.0",
		"checks":    statuses,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) livenessHandler(c *gin.Context) {
	if !s.healthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Run starts the HTTP server and blocks until a shutdown signal or context
// cancellation, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	// Create a cancellable context for background goroutines so Shutdown() can stop them.
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelRunCtx = cancel

	if s.cfg.OTLPEndpoint != "" {
		stop, err := traces.Init(runCtx, s.cfg.OTLPEndpoint, s.logger)
		if err != nil {
			s.logger.Warn("trace exporter init failed", "error", err)
		} else {
			s.traceStop = stop
		}
	}

	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("starting server",
			"port", s.cfg.Port,
			"env", s.cfg.Env,
			"scoring_api", s.cfg.RiskAPIURL,
		)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	go s.realtimeHub.Run(runCtx)

	if s.db != nil {
		go metrics.StartDBStatsCollector(runCtx, s.db, 15*time.Second)
	}

	// Mark as ready after brief delay for startup
	go func() {
		time.Sleep(100 * time.Millisecond)
		s.ready.Store(true)
		s.logger.Info("server ready")
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	s.ready.Store(false)
	s.logger.Info("starting graceful shutdown")

	// Cancel the context for all background goroutines (hub, collectors)
	if s.cancelRunCtx != nil {
		s.cancelRunCtx()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
		s.logger.Info("rate limiter stopped")
	}

	// Drain queued behavioral events
	if s.events != nil {
		s.events.Close()
		s.logger.Info("event logger drained")
	}

	if s.traceStop != nil {
		if err := s.traceStop(ctx); err != nil {
			s.logger.Warn("trace exporter shutdown error", "error", err)
		}
	}

	// Close database connection pool
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("database close error", "error", err)
		} else {
			s.logger.Info("database connection closed")
		}
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the gin router for testing
func (s *Server) Router() *gin.Engine {
	return s.router
}
