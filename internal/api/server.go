// Package api exposes the connector subsystem over HTTP to the UI and
// automation collaborators.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vmsgate/internal/client"
	"vmsgate/internal/media"
	"vmsgate/internal/metrics"
	"vmsgate/internal/store"
)

type Config struct {
	ListenAddr  string
	RelayDomain string
	Store       store.Store
	Dispatcher  *client.Dispatcher
	Media       *media.Negotiator
	Logger      *zap.Logger
}

type Server struct {
	cfg        Config
	log        *zap.Logger
	router     *gin.Engine
	httpServer *http.Server
}

func New(cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		cfg:    cfg,
		log:    cfg.Logger,
		router: router,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := s.router.Group("/api")
	{
		api.POST("/connectors", s.createConnector)
		api.GET("/connectors", s.listConnectors)
		api.GET("/connectors/:id", s.getConnector)
		api.DELETE("/connectors/:id", s.deleteConnector)

		api.GET("/connectors/:id/devices", s.listDevices)
		api.GET("/connectors/:id/devices/:deviceId", s.getDevice)

		api.POST("/connectors/:id/events", s.createEvent)
		api.POST("/connectors/:id/bookmarks", s.createBookmark)

		api.GET("/connectors/:id/cameras/:cameraId/media/plan", s.planMedia)
		api.GET("/connectors/:id/cameras/:cameraId/media", s.fetchMedia)
		api.GET("/connectors/:id/cameras/:cameraId/thumbnail", s.getThumbnail)
	}
}

// Handler returns the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until Shutdown or a listener error. WriteTimeout is left
// unset: relayed media streams are effectively unbounded.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:        s.cfg.ListenAddr,
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	s.log.Info("API server listening", zap.String("addr", s.cfg.ListenAddr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
