package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"realestate/server/internal/apperr"
)

var statusByKind = map[error]int{
	apperr.ErrValidation:             http.StatusBadRequest,
	apperr.ErrPermissionDenied:       http.StatusForbidden,
	apperr.ErrNotFound:               http.StatusNotFound,
	apperr.ErrSchedulingConflict:     http.StatusConflict,
	apperr.ErrConflict:               http.StatusConflict,
	apperr.ErrInvalidStateTransition: http.StatusConflict,
}

// StatusFor maps an error kind to its HTTP status; unclassified errors are 500
func StatusFor(err error) int {
	if status, ok := statusByKind[apperr.Kind(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// fail writes err as a JSON error body. Internal errors are logged and hidden.
func (h *Handler) fail(c *gin.Context, err error, action string) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).Errorf("Failed to %s", action)
		c.JSON(status, gin.H{"error": "Failed to " + action})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
