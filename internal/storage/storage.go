package storage

import (
	"context"
	"errors"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// ErrNotConfigured is returned by the disabled backend.
var ErrNotConfigured = errors.New("object storage is not configured")

// FileStorage defines the object storage operations used for history exports.
type FileStorage interface {
	// PutObject uploads body under objectKey, replacing any existing object.
	PutObject(ctx context.Context, objectKey, contentType string, body []byte) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// ListObjectKeys returns every key under prefix.
	ListObjectKeys(ctx context.Context, prefix string) ([]string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// Disabled is used when no bucket is configured. Exports fail, erasure has
// nothing to clean up.
type Disabled struct{}

func (Disabled) PutObject(context.Context, string, string, []byte) error { return ErrNotConfigured }

func (Disabled) GeneratePresignedDownloadURL(context.Context, string, time.Duration) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) ListObjectKeys(context.Context, string) ([]string, error) { return nil, nil }

func (Disabled) DeleteObject(context.Context, string) error { return nil }
