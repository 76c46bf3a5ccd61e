package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smartlife/devicebridge/internal/types"
	"go.uber.org/zap"
)

// respondError maps domain errors onto HTTP statuses. Remote backend
// failures keep their original code and message so callers see what the
// cloud actually said.
func (s *Server) respondError(c *gin.Context, err error) {
	var bridgeErr *types.BridgeError
	if errors.As(err, &bridgeErr) {
		status := http.StatusInternalServerError
		switch bridgeErr.Code {
		case types.CodeDeviceNotFound:
			status = http.StatusNotFound
		case types.CodePairingInProgress:
			status = http.StatusConflict
		case types.CodeInvalidPayload:
			status = http.StatusBadRequest
		case types.CodePairingStopped:
			status = http.StatusConflict
		}
		c.JSON(status, types.NewErrorResponse(bridgeErr.Code, bridgeErr.Message, nil))
		return
	}

	var remoteErr *types.RemoteError
	if errors.As(err, &remoteErr) {
		c.JSON(http.StatusBadGateway, types.NewErrorResponse(
			remoteErr.Code, remoteErr.Message, nil))
		return
	}

	s.logger.Error("Unhandled API error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, types.NewErrorResponse(
		"INTERNAL_ERROR", "internal server error", nil))
}

func (s *Server) homeID(c *gin.Context) (int64, bool) {
	raw := c.Query("home_id")
	if raw == "" {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(
			types.CodeInvalidPayload, "home_id query parameter is required", nil))
		return 0, false
	}

	homeID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(
			types.CodeInvalidPayload, "home_id must be an integer", nil))
		return 0, false
	}
	return homeID, true
}

// GET /api/v1/devices?home_id=123
func (s *Server) listDevices(c *gin.Context) {
	homeID, ok := s.homeID(c)
	if !ok {
		return
	}

	devices := s.lm.Registry().ListDevices(c.Request.Context(), homeID)

	c.JSON(http.StatusOK, gin.H{
		"devices": devices,
		"count":   len(devices),
	})
}

// POST /api/v1/devices/:id/commands
func (s *Server) controlDevice(c *gin.Context) {
	deviceID := c.Param("id")

	var req struct {
		Commands map[string]any `json:"commands"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(
			types.CodeInvalidPayload, "request body must be JSON with a commands object", nil))
		return
	}

	if err := s.lm.CommandValidator().ValidateCommands(req.Commands); err != nil {
		s.respondError(c, err)
		return
	}

	if err := s.lm.Registry().ControlDevice(c.Request.Context(), deviceID, req.Commands); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"device_id": deviceID,
	})
}

// DELETE /api/v1/devices/:id?home_id=123
func (s *Server) removeDevice(c *gin.Context) {
	deviceID := c.Param("id")
	homeID, ok := s.homeID(c)
	if !ok {
		return
	}

	if err := s.lm.Registry().RemoveDevice(c.Request.Context(), deviceID, homeID); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"device_id": deviceID,
	})
}

// POST /api/v1/test-devices
func (s *Server) addTestDevice(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(
			types.CodeInvalidPayload, "invalid request body", nil))
		return
	}

	device := s.lm.Registry().AddTestDevice(req.Name, req.Type)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"device":  device,
	})
}

// DELETE /api/v1/test-devices/:id
func (s *Server) removeTestDevice(c *gin.Context) {
	deviceID := c.Param("id")

	if err := s.lm.Registry().RemoveTestDevice(deviceID); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"device_id": deviceID,
	})
}

// DELETE /api/v1/test-devices
func (s *Server) clearAllTestDevices(c *gin.Context) {
	removed := s.lm.Registry().ClearAllTestDevices()

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"removed_count": removed,
	})
}

// GET /api/v1/test-devices/stats
func (s *Server) getDeletionStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.lm.Registry().GetDeletionStats())
}

// GET /api/v1/test-device-templates
func (s *Server) listTestDeviceTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"templates": s.lm.Registry().Templates(),
	})
}
