package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/verdantlab/agridash/internal/identity"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (s *Server) identityCall(c *gin.Context, call func(ctx context.Context) (any, error)) {
	if s.deps.Identity == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "identity provider not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	result, err := call(ctx)
	if err != nil {
		var authErr *identity.AuthError
		if errors.As(err, &authErr) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": authErr.Code})
			return
		}
		s.log.Error().Err(err).Msg("identity provider call failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "identity provider unreachable"})
		return
	}

	if result == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleV1SignIn exchanges credentials for an ID token.
// POST /api/v1/auth/signin
func (s *Server) handleV1SignIn(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	s.identityCall(c, func(ctx context.Context) (any, error) {
		user, err := s.deps.Identity.SignIn(ctx, req.Email, req.Password)
		if err != nil {
			return nil, err
		}
		return user, nil
	})
}

// handleV1SignUp registers a new account.
// POST /api/v1/auth/signup
func (s *Server) handleV1SignUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	s.identityCall(c, func(ctx context.Context) (any, error) {
		user, err := s.deps.Identity.SignUp(ctx, req.Email, req.Password)
		if err != nil {
			return nil, err
		}
		return user, nil
	})
}

type resetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// handleV1PasswordReset asks the provider to email a reset link.
// POST /api/v1/auth/reset
func (s *Server) handleV1PasswordReset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}
	s.identityCall(c, func(ctx context.Context) (any, error) {
		return nil, s.deps.Identity.SendPasswordReset(ctx, req.Email)
	})
}

// handleV1SignOut acknowledges a sign-out. ID tokens are bearer
// credentials without server-side sessions; discarding the token is the
// client's job.
// POST /api/v1/auth/signout
func (s *Server) handleV1SignOut(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
