package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"portalar/api/store"
)

// Health reports liveness and which storage backend the process runs on.
func Health(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"backend": s.Name(),
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	}
}
