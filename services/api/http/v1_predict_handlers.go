package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// handleV1Predict forwards an uploaded plant photo to the disease
// classifier and returns its label and confidence.
// POST /api/v1/predict  (multipart form field "image")
func (s *Server) handleV1Predict(c *gin.Context) {
	if s.deps.Inference == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "inference service not configured"})
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field image is required"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image upload"})
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	pred, err := s.deps.Inference.Predict(ctx, header.Filename, file)
	if err != nil {
		s.log.Error().Err(err).Msg("inference request failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "inference service unreachable"})
		return
	}

	c.JSON(http.StatusOK, pred)
}
