// Package handlers holds the gin handlers for the search, feedback, and
// health endpoints, translating between wire DTOs and domain types and
// mapping domain errors to HTTP statuses.
package handlers

import (
	"errors"
	"net/http"

	"github.com/fntelecomllc/rankingengine/internal/domain/services"
	"github.com/fntelecomllc/rankingengine/internal/store"
	"github.com/gin-gonic/gin"
)

// StatusFor maps a domain error to an HTTP status. Unrecognized errors
// default to 500.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes a {"error": message} JSON body with the status mapped
// from err's kind.
func WriteError(c *gin.Context, err error) {
	c.JSON(StatusFor(err), gin.H{"error": err.Error()})
}
