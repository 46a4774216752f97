package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"portalar/api/middleware"
	"portalar/api/models"
	"portalar/api/utils"
)

type AuthHandlers struct {
	passwordHash []byte
	tokens       *utils.TokenManager
}

func NewAuthHandlers(passwordHash string, tokens *utils.TokenManager) *AuthHandlers {
	return &AuthHandlers{passwordHash: []byte(passwordHash), tokens: tokens}
}

// Login exchanges the shared admin password for a bearer token. The response
// does not say whether the password was wrong or the body malformed beyond
// the usual 400/401 split.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, models.NewValidationError("password is required"))
		return
	}

	if err := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password)); err != nil {
		log.Warn().Str("ip", c.ClientIP()).Msg("failed admin login attempt")
		renderError(c, models.NewAuthenticationError("invalid password"))
		return
	}

	token, expiresAt, err := h.tokens.Generate()
	if err != nil {
		log.Error().Err(err).Msg("token generation failed")
		renderError(c, models.NewStorageError("failed to issue token"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": expiresAt.UTC().Format(time.RFC3339),
	})
}

// Verify reports whether the presented token is still valid. It sits behind
// AuthRequired, so reaching it at all means yes.
func (h *AuthHandlers) Verify(c *gin.Context) {
	resp := gin.H{"valid": true}
	if sub, ok := c.Get(middleware.CtxAuthSubject); ok {
		resp["subject"] = sub
	}
	if exp, ok := c.Get(middleware.CtxAuthExpiresAt); ok {
		if t, ok := exp.(time.Time); ok {
			resp["expiresAt"] = t.UTC().Format(time.RFC3339)
		}
	}
	c.JSON(http.StatusOK, resp)
}
