package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"portalar/api/models"
	"portalar/api/utils"
)

// Context keys set by AuthRequired for downstream handlers.
const (
	CtxAuthSubject   = "auth_subject"
	CtxAuthExpiresAt = "auth_expires_at"
)

// AuthRequired guards mutating and admin routes with the bearer token.
// Missing, malformed, badly-signed and expired tokens all collapse to 401;
// the log keeps the reasons distinguishable.
func AuthRequired(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apiErr := models.NewAuthenticationError("unauthorized: no token provided")
			c.AbortWithStatusJSON(apiErr.Status, apiErr)
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			log.Debug().Str("ip", c.ClientIP()).Msg("auth rejected: malformed authorization header")
			apiErr := models.NewAuthenticationError("unauthorized: malformed authorization header")
			c.AbortWithStatusJSON(apiErr.Status, apiErr)
			return
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			reason := "invalid"
			if errors.Is(err, utils.ErrTokenExpired) {
				reason = "expired"
			}
			log.Debug().Str("ip", c.ClientIP()).Str("reason", reason).Msg("auth rejected")
			apiErr := models.NewAuthenticationError("unauthorized: invalid or expired token")
			c.AbortWithStatusJSON(apiErr.Status, apiErr)
			return
		}

		c.Set(CtxAuthSubject, claims.Subject)
		c.Set(CtxAuthExpiresAt, claims.ExpiresAt.Time)
		c.Next()
	}
}
