// Package cache stores successful celebrity identifications keyed by image hash.
package cache

import (
	"context"
	"crypto/sha1" //nolint:gosec // content addressing, not security
	"encoding/hex"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is not cached.
var ErrMiss = errors.New("cache miss")

// Cache abstracts the key/value operations used by the identification service.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
}

// IdentificationKey returns the cache key for an annotated image.
func IdentificationKey(image []byte) string {
	return "identification:" + ImageHash(image)
}

// ImageHash returns the hex SHA-1 of the image bytes.
func ImageHash(image []byte) string {
	sum := sha1.Sum(image) //nolint:gosec // see import
	return hex.EncodeToString(sum[:])
}
