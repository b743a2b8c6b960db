package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/verdantlab/agridash/internal/identity"
)

const uidContextKey = "uid"

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requireUser verifies the bearer ID token against the identity provider
// and stores the resolved uid in the request context. The uid namespaces
// all realtime-store paths.
func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.deps.Identity == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "identity provider not configured"})
			return
		}

		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		uid, err := s.deps.Identity.Lookup(ctx, token)
		if err != nil {
			// A provider outage must not read as a revoked token.
			var authErr *identity.AuthError
			if errors.As(err, &authErr) {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			s.log.Error().Err(err).Msg("identity token verification failed")
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "identity provider unreachable"})
			return
		}

		c.Set(uidContextKey, uid)
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetString(uidContextKey)
}
