package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smartlife/devicebridge/internal/api/websocket"
	"github.com/smartlife/devicebridge/internal/auth"
	"github.com/smartlife/devicebridge/internal/config"
	"github.com/smartlife/devicebridge/internal/interfaces"
	"go.uber.org/zap"
)

type Server struct {
	router       *gin.Engine
	lm           interfaces.LifecycleManager
	logger       *zap.Logger
	server       *http.Server
	wsHub        *websocket.Hub
	tokenService *auth.TokenService
}

func NewServer(cfg *config.Config, lm interfaces.LifecycleManager, logger *zap.Logger, wsHub *websocket.Hub, tokenService *auth.TokenService) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:       gin.New(),
		lm:           lm,
		logger:       logger,
		wsHub:        wsHub,
		tokenService: tokenService,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("REST server failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down REST API server")
	return s.server.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Middleware
	s.router.Use(gin.Recovery())
	s.router.Use(RequestIDMiddleware())
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(CORSMiddleware())

	// Public routes (no auth required)
	s.router.GET("/health", s.healthCheck)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		// ==================== AUTH (PUBLIC) ====================
		if s.tokenService != nil {
			v1.POST("/auth/token", s.issueToken)
		}

		protected := v1.Group("")
		if s.tokenService != nil {
			protected.Use(s.tokenService.Middleware())
		}

		// ==================== DEVICE CATALOG ====================
		devices := protected.Group("/devices")
		{
			devices.GET("", s.listDevices)
			devices.POST("/:id/commands", s.controlDevice)
			devices.DELETE("/:id", s.removeDevice)
		}

		// ==================== TEST DEVICES ====================
		testDevices := protected.Group("/test-devices")
		{
			testDevices.POST("", s.addTestDevice)
			testDevices.GET("/stats", s.getDeletionStats)
			testDevices.DELETE("/:id", s.removeTestDevice)
			testDevices.DELETE("", s.clearAllTestDevices)
		}
		protected.GET("/test-device-templates", s.listTestDeviceTemplates)

		// ==================== PAIRING ====================
		pairing := protected.Group("/pairing")
		{
			pairing.POST("/start", s.startPairing)
			pairing.POST("/stop", s.stopPairing)
			pairing.GET("/status", s.getPairingStatus)
		}

		// ==================== SYSTEM ====================
		protected.GET("/system/status", s.getSystemStatus)

		// ==================== WEBSOCKET (PUBLIC) ====================
		ws := v1.Group("/ws")
		{
			ws.GET("/live", s.wsLiveConnection)
			ws.GET("/status", s.wsStatus)
		}
	}
}

// WebSocket handlers
func (s *Server) wsLiveConnection(c *gin.Context) {
	websocket.ServeWs(s.wsHub, c.Writer, c.Request)
}

func (s *Server) wsStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connected_clients": s.wsHub.GetClientCount(),
	})
}

// Health check (public)
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

// GET /api/v1/system/status
func (s *Server) getSystemStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.lm.GetCurrentStatus())
}

// POST /api/v1/auth/token
func (s *Server) issueToken(c *gin.Context) {
	var req struct {
		AccessKey  string `json:"access_key" binding:"required"`
		ClientName string `json:"client_name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := s.tokenService.IssueToken(req.AccessKey, req.ClientName)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid access key"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
