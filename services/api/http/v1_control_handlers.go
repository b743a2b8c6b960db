package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Actuators the greenhouse controller exposes.
var actuatorNames = map[string]bool{
	"water_pump":  true,
	"ventilation": true,
	"led":         true,
}

func (s *Server) realtimeSnapshot(c *gin.Context, node string) {
	if s.deps.Realtime == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "realtime store not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	raw, err := s.deps.Realtime.Get(ctx, "users/"+userID(c)+"/"+node)
	if err != nil {
		s.log.Error().Err(err).Str("node", node).Msg("realtime snapshot failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "realtime store unreachable"})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// handleV1Greenhouse returns the live greenhouse snapshot (sensor
// readings, actuator states, control mode) for the authenticated user.
// GET /api/v1/realtime/greenhouse
func (s *Server) handleV1Greenhouse(c *gin.Context) {
	s.realtimeSnapshot(c, "greenhouse")
}

// handleV1GreenEnergy returns the live energy snapshot.
// GET /api/v1/realtime/greenenergy
func (s *Server) handleV1GreenEnergy(c *gin.Context) {
	s.realtimeSnapshot(c, "greenenergy")
}

type actuatorRequest struct {
	State string `json:"state" binding:"required,oneof=ON OFF"`
}

// handleV1ToggleActuator writes an actuator state for the authenticated
// user and relays the command to the device controller. Manual toggles
// are rejected while the greenhouse runs in AUTO mode.
// POST /api/v1/actuators/:name  {"state":"ON"}
func (s *Server) handleV1ToggleActuator(c *gin.Context) {
	name := c.Param("name")
	if !actuatorNames[name] {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown actuator"})
		return
	}

	var req actuatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state must be ON or OFF"})
		return
	}

	if s.deps.Realtime == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "realtime store not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	base := "users/" + userID(c) + "/greenhouse"

	raw, err := s.deps.Realtime.Get(ctx, base+"/control_mode")
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "realtime store unreachable"})
		return
	}
	var mode string
	_ = json.Unmarshal(raw, &mode)
	if mode == "AUTO" {
		c.JSON(http.StatusConflict, gin.H{"error": "greenhouse is in AUTO mode"})
		return
	}

	if err := s.deps.Realtime.Put(ctx, base+"/"+name, req.State); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "actuator write failed"})
		return
	}

	if err := s.deps.Relay.PublishCommand("override", map[string]string{name: req.State}); err != nil {
		// the store write is the source of truth; relay failure is not fatal
		s.log.Warn().Err(err).Str("actuator", name).Msg("device relay failed")
	}

	c.JSON(http.StatusOK, gin.H{"actuator": name, "state": req.State})
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required,oneof=AUTO MANUAL"`
}

// handleV1ControlMode switches the greenhouse between automatic and
// manual control.
// POST /api/v1/controls/mode  {"mode":"AUTO"}
func (s *Server) handleV1ControlMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be AUTO or MANUAL"})
		return
	}

	if s.deps.Realtime == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "realtime store not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := s.deps.Realtime.Put(ctx, "users/"+userID(c)+"/greenhouse/control_mode", req.Mode); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "mode write failed"})
		return
	}

	if err := s.deps.Relay.PublishCommand("mode", map[string]string{"control_mode": req.Mode}); err != nil {
		s.log.Warn().Err(err).Msg("device relay failed")
	}

	c.JSON(http.StatusOK, gin.H{"control_mode": req.Mode})
}
