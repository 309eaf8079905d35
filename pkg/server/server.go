package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/PaulieB14/grc20-publisher/internal/manager"
	"github.com/PaulieB14/grc20-publisher/pkg/metrics"
)

// Server holds the state for the read-only REST API.
type Server struct {
	manager     *manager.StoreManager
	browserBase string
	router      *gin.Engine
	logger      zerolog.Logger
}

// NewServer creates a new Server instance. gatherer backs /metrics and may
// be nil to disable it.
func NewServer(mgr *manager.StoreManager, gatherer prometheus.Gatherer, browserBase string, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	s := &Server{
		manager:     mgr,
		browserBase: browserBase,
		router:      r,
		logger:      logger,
	}
	r.Use(gin.Recovery(), s.accessLog)
	s.setupRoutes(gatherer)
	return s
}

// Handler exposes the router, for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	s.router.GET("/health", s.healthCheck)
	if gatherer != nil {
		s.router.GET("/metrics", gin.WrapH(metrics.Handler(gatherer)))
	}

	v1 := s.router.Group("/v1")
	v1.GET("/spaces", s.handleSpaces)
	v1.GET("/spaces/:space/entities", s.handleEntities)
	v1.GET("/spaces/:space/entities/:kind/:key", s.handleEntity)
	v1.GET("/spaces/:space/edits", s.handleEdits)
	v1.GET("/spaces/:space/edit", s.handleEdit)
	v1.GET("/spaces/:space/graph", s.handleGraph)
}

// Health check
func (s *Server) healthCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (s *Server) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debug().
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", c.Writer.Status()).
		Dur("took", time.Since(start)).
		Msg("request")
}
