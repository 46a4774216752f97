package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalar/api/utils"
)

func guardedRouter(tokens *utils.TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AuthRequired(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": c.MustGet(CtxAuthSubject)})
	})
	return r
}

func getWithHeader(r *gin.Engine, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	r := guardedRouter(tokens)

	token, _, err := tokens.Generate()
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"no bearer prefix", token, http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getWithHeader(r, tt.header).Code)
		})
	}
}

func TestAuthRequiredExpiredToken(t *testing.T) {
	expired := utils.NewTokenManager("test-secret", -time.Minute)
	token, _, err := expired.Generate()
	require.NoError(t, err)

	r := guardedRouter(utils.NewTokenManager("test-secret", time.Hour))
	assert.Equal(t, http.StatusUnauthorized, getWithHeader(r, "Bearer "+token).Code)
}
