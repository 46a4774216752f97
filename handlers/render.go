// Package handlers wires HTTP requests to the service layer. Handlers bind
// and render; validation and storage live in services.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"portalar/api/models"
)

// dbTimeout bounds every storage operation reached from a handler.
const dbTimeout = 15 * time.Second

// renderError writes the typed error as JSON. Anything that is not an
// APIError becomes an opaque 500 so internals never leak to clients.
func renderError(c *gin.Context, err error) {
	var apiErr *models.APIError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, apiErr)
		return
	}
	c.JSON(http.StatusInternalServerError, models.NewStorageError("internal error"))
}
