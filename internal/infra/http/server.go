// Package http exposes the registry over a JSON API. Mutations are
// authenticated by an ed25519 signature over the request body; the signing
// key is the caller identity the registry records.
package http

import (
	"net/http"
	"time"

	"registryd/internal/config"
	"registryd/internal/domain"
	"registryd/internal/infra/eventlog"
	"registryd/internal/usecase"

	"github.com/gin-gonic/gin"
)

type Server struct {
	cfg     config.Config
	r       *gin.Engine
	program *usecase.Program
	journal *eventlog.Journal

	limiter           domain.RateLimiter
	rateLimitRequests int
	rateLimitWindow   time.Duration
}

type ServerDeps struct {
	Program     *usecase.Program
	Journal     *eventlog.Journal
	RateLimiter domain.RateLimiter
}

func NewServer(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:               cfg,
		r:                 r,
		program:           deps.Program,
		journal:           deps.Journal,
		limiter:           deps.RateLimiter,
		rateLimitRequests: cfg.RateLimitRequests,
		rateLimitWindow:   cfg.RateLimitWindow(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.r.Group("/v1")
	{
		v1.POST("/registry", s.handleInitializeRegistry)
		v1.GET("/registry", s.handleGetRegistry)

		v1.POST("/agents", s.handleRegisterAgent)
		v1.POST("/identities", s.handleRegisterIdentity)
		v1.GET("/agents/:ref", s.handleGetAgent)
		v1.PATCH("/agents/:ref", s.handleUpdateAgent)
		v1.POST("/agents/:ref/deactivate", s.handleDeactivateAgent)

		v1.POST("/agents/:ref/validations", s.handlePostValidation)
		v1.GET("/agents/:ref/validations/:day", s.handleGetValidation)

		v1.POST("/agents/:ref/feedback", s.handlePostFeedback)
		v1.GET("/agents/:ref/feedback/:reviewer", s.handleGetFeedback)

		v1.POST("/anchors", s.handleAnchorMerkleRoot)
		v1.GET("/anchors/:plan_id", s.handleGetMerkleAnchor)

		v1.GET("/events", s.handleListEvents)
	}

	s.r.NoRoute(func(c *gin.Context) {
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.r
}

func (s *Server) Run() error {
	return s.r.Run(s.cfg.HTTPAddr)
}
