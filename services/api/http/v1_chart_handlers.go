package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/verdantlab/agridash/internal/feed"
)

// handleV1Charts returns per-sensor chart series for a range.
// GET /api/v1/charts?range=day|week|month&refresh=true
//
// A failed feed fetch degrades to whatever is cached (possibly empty
// series); the dashboard shows "no data" rather than an error page.
func (s *Server) handleV1Charts(c *gin.Context) {
	rangeStr := c.DefaultQuery("range", string(feed.RangeDay))
	r, ok := feed.ParseRange(rangeStr)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "range must be day, week or month"})
		return
	}

	if s.deps.Ingestor.Empty() || c.Query("refresh") == "true" {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()
		if _, err := s.deps.Ingestor.Refresh(ctx); err != nil {
			s.log.Warn().Err(err).Msg("feed refresh failed, serving cached series")
		}
	}

	series := s.deps.Ingestor.Query(r)
	c.JSON(http.StatusOK, gin.H{
		"data": series,
		"meta": gin.H{
			"range":   r,
			"sensors": len(series),
		},
	})
}
