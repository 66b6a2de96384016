package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/salmalteam/salmal/backend/internal/auth"
	"github.com/salmalteam/salmal/backend/internal/handlers"
	"github.com/salmalteam/salmal/backend/internal/logging"
	"github.com/salmalteam/salmal/backend/internal/metrics"
	"github.com/salmalteam/salmal/backend/internal/middleware"
)

// HealthChecker reports the state of the backing store.
type HealthChecker interface {
	Health() map[string]string
}

type Server struct {
	handler *handlers.Handler
	issuer  *auth.TokenIssuer
	health  HealthChecker
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

func New(handler *handlers.Handler, issuer *auth.TokenIssuer, health HealthChecker, m *metrics.Metrics, logger logrus.FieldLogger) *Server {
	return &Server{
		handler: handler,
		issuer:  issuer,
		health:  health,
		metrics: m,
		log:     logger,
	}
}

// HTTPServer wraps the router in an http.Server listening on port.
func (s *Server) HTTPServer(port string) *http.Server {
	return &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(s.log), s.metrics.Middleware())

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", s.healthHandler)
	r.GET("/metrics", s.metrics.Handler())

	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/auth/login", s.handler.Auth.Login)
		api.POST("/auth/signup/:provider", s.handler.Auth.SignUp)
		api.POST("/auth/reissue", s.handler.Auth.Reissue)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(s.issuer))
		{
			protected.POST("/auth/logout", s.handler.Auth.Logout)

			protected.GET("/members/me", s.handler.Member.GetMe)
			protected.DELETE("/members/me", s.handler.Member.DeleteMe)

			protected.POST("/votes", s.handler.Vote.Register)
			protected.GET("/votes", s.handler.Vote.GetVotes)
			protected.GET("/votes/:voteID", s.handler.Vote.GetVote)
			protected.DELETE("/votes/:voteID", s.handler.Vote.DeleteVote)

			protected.POST("/votes/:voteID/evaluations", s.handler.Vote.Evaluate)
			protected.DELETE("/votes/:voteID/evaluations", s.handler.Vote.CancelEvaluation)
			protected.POST("/votes/:voteID/bookmarks", s.handler.Vote.Bookmark)
			protected.DELETE("/votes/:voteID/bookmarks", s.handler.Vote.CancelBookmark)
			protected.POST("/votes/:voteID/reports", s.handler.Vote.Report)

			protected.POST("/votes/:voteID/comments", s.handler.Comment.CreateComment)
			protected.GET("/votes/:voteID/comments", s.handler.Comment.GetComments)
			protected.GET("/votes/:voteID/comments/all", s.handler.Comment.GetAllComments)
		}
	}

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	stats := s.health.Health()
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, stats)
}
