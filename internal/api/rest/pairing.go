package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smartlife/devicebridge/internal/pairing"
	"github.com/smartlife/devicebridge/internal/types"
)

// POST /api/v1/pairing/start
//
// Blocks until the simulated pairing attempt completes or is stopped,
// mirroring the provisioning APIs this bridge stands in for.
func (s *Server) startPairing(c *gin.Context) {
	var req struct {
		Mode     string `json:"mode" binding:"required"`
		SSID     string `json:"ssid" binding:"required"`
		Password string `json:"password"`
		Timeout  int    `json:"timeout"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(
			types.CodeInvalidPayload, "mode and ssid are required", nil))
		return
	}

	mode, ok := pairing.ParseMode(req.Mode)
	if !ok {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(
			types.CodeInvalidPayload, "mode must be EZ or AP", nil))
		return
	}

	timeoutHint := time.Duration(req.Timeout) * time.Second

	device, err := s.lm.Pairing().StartPairing(c.Request.Context(), mode, req.SSID, timeoutHint)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"device":  device,
	})
}

// POST /api/v1/pairing/stop
func (s *Server) stopPairing(c *gin.Context) {
	s.lm.Pairing().StopPairing()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// GET /api/v1/pairing/status
func (s *Server) getPairingStatus(c *gin.Context) {
	state, mode := s.lm.Pairing().Status()

	resp := gin.H{
		"state":       string(state),
		"in_progress": state == pairing.StateInProgress,
	}
	if mode != "" {
		resp["mode"] = string(mode)
	}

	c.JSON(http.StatusOK, resp)
}
