package service

import (
	"alcyxob/fitness-tracker/internal/resolver"
	"errors"
	"fmt"
)

// --- Error Definitions ---
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrUserNotFound     = errors.New("user not found")

	ErrPlanNotFound     = errors.New("generated plan not found")
	ErrPlanAccessDenied = errors.New("access denied to this generated plan")
	ErrWorkoutNotFound  = errors.New("workout not found")

	// ErrMalformedPlanDocument is recovered inside ImportPlan by substituting
	// the default plan; it only reaches callers of NormalizePlan.
	ErrMalformedPlanDocument = errors.New("generated plan document is missing a title or exercises")

	// ErrCatalogUnavailable aborts materialization of the whole plan.
	ErrCatalogUnavailable = resolver.ErrCatalogUnavailable

	// ErrConcurrentMaterialization is returned only when another request won
	// the race for a plan and its workout could not be read back.
	ErrConcurrentMaterialization = errors.New("plan was materialized concurrently")

	// ErrStorageWrite matches every *StorageWriteError.
	ErrStorageWrite = errors.New("storage write failed")
)

// StorageWriteError reports a failed persistence step. The operation left no
// partial state behind and may be retried as a whole.
type StorageWriteError struct {
	Op  string
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

func (e *StorageWriteError) Is(target error) bool { return target == ErrStorageWrite }
