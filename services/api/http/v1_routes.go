package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes sets up the v1 API structure.
// Groups: /api/v1/charts, /api/v1/history, /api/v1/realtime,
// /api/v1/weather, /api/v1/auth.
func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.engine.Group("/api/v1")

	// Chart series from the feed ingestor
	v1.GET("/charts", s.handleV1Charts)

	// Archived history from Postgres
	v1.GET("/history/:sensor", s.handleV1History)

	// Weather pass-through
	v1.GET("/weather", s.handleV1Weather)
	v1.GET("/weather/forecast", s.handleV1Forecast)

	// Disease classifier proxy
	v1.POST("/predict", s.handleV1Predict)

	// Auth delegation
	auth := v1.Group("/auth")
	{
		auth.POST("/signin", s.handleV1SignIn)
		auth.POST("/signup", s.handleV1SignUp)
		auth.POST("/reset", s.handleV1PasswordReset)
		auth.POST("/signout", s.handleV1SignOut)
	}

	// Live state and actuator control, namespaced per user
	user := v1.Group("")
	user.Use(s.requireUser())
	{
		user.GET("/realtime/greenhouse", s.handleV1Greenhouse)
		user.GET("/realtime/greenenergy", s.handleV1GreenEnergy)
		user.POST("/actuators/:name", s.handleV1ToggleActuator)
		user.POST("/controls/mode", s.handleV1ControlMode)
	}
}
