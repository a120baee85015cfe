package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gestorhub/gestor/internal/auth/token"
	"github.com/gestorhub/gestor/internal/requestctx"
)

// AuthRequired verifies the bearer access token and stores the actor in
// the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		identity, err := s.tokens.Verify(raw, token.KindAccess)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := requestctx.WithActor(c.Request.Context(), requestctx.Actor{
			UserID:    identity.UserID,
			CompanyID: identity.CompanyID,
			Role:      identity.Role,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
