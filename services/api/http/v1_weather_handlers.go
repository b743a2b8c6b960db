package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// handleV1Weather proxies current conditions for a city.
// GET /api/v1/weather?city=Tunis
func (s *Server) handleV1Weather(c *gin.Context) {
	if s.deps.Weather == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "weather API not configured"})
		return
	}

	city := c.DefaultQuery("city", s.cfg.WeatherCity)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	raw, err := s.deps.Weather.Current(ctx, city)
	if err != nil {
		s.log.Error().Err(err).Str("city", city).Msg("weather fetch failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "weather provider unreachable"})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// handleV1Forecast proxies the forecast for coordinates.
// GET /api/v1/weather/forecast?lat=36.8&lon=10.18
func (s *Server) handleV1Forecast(c *gin.Context) {
	if s.deps.Weather == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "weather API not configured"})
		return
	}

	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if errLat != nil || errLon != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon are required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	raw, err := s.deps.Weather.Forecast(ctx, lat, lon)
	if err != nil {
		s.log.Error().Err(err).Msg("forecast fetch failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "weather provider unreachable"})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}
