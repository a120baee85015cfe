package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/gestorhub/gestor/internal/auth/domain"
)

func (s *Server) Register(c *gin.Context) {
	var req authdomain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.authsvc.Register(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) Login(c *gin.Context) {
	var req authdomain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.authsvc.Login(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) Refresh(c *gin.Context) {
	var req authdomain.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	pair, err := s.authsvc.Refresh(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": pair})
}

func (s *Server) ForgotPassword(c *gin.Context) {
	var req authdomain.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resetToken, err := s.authsvc.ForgotPassword(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// The token is returned in the body until an email provider is wired.
	// Unknown addresses get the same response shape.
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"reset_token": resetToken}})
}

func (s *Server) ResetPassword(c *gin.Context) {
	var req authdomain.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authsvc.ResetPassword(c.Request.Context(), req); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"status": "password_updated"}})
}

func (s *Server) Me(c *gin.Context) {
	user, err := s.authsvc.Profile(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": user})
}

func isAuthValidationError(err error) bool {
	switch err {
	case authdomain.ErrInvalidName,
		authdomain.ErrInvalidEmail,
		authdomain.ErrWeakPassword:
		return true
	default:
		return false
	}
}
