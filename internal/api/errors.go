package api

import (
	"alcyxob/fitness-tracker/internal/service"
	"alcyxob/fitness-tracker/internal/storage"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// abortWithServiceError maps service errors to HTTP responses. Storage
// failures are reported as retryable; the operation left nothing behind.
func abortWithServiceError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, service.ErrValidationFailed), errors.Is(err, service.ErrMalformedPlanDocument):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPlanAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrWorkoutNotFound),
		errors.Is(err, service.ErrExerciseNotFound),
		errors.Is(err, service.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCatalogUnavailable):
		// Not retried automatically; it needs the catalog to be seeded.
		abortRetryable(c, http.StatusServiceUnavailable, "Exercise catalog is unavailable", false)
	case errors.Is(err, storage.ErrNotConfigured):
		abortWithError(c, http.StatusNotImplemented, storage.ErrNotConfigured.Error())
	case errors.Is(err, service.ErrStorageWrite), errors.Is(err, service.ErrConcurrentMaterialization):
		abortRetryable(c, http.StatusServiceUnavailable, "The operation failed and was not applied. Please try again.", true)
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
