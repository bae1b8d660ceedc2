// Package cache provides byte-level caching for network payloads fetched
// from the spending API.
//
// Three backends share one interface: a file cache for CLI usage, a Redis
// cache for shared deployments, and a null cache that disables caching
// entirely. Keys are SHA-256 hashes of the request parameters, so changing
// the minimum-amount filter or the edge cap produces a distinct entry.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache stores opaque byte values with optional expiry.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Key builds a cache key from a namespace and request parameters.
// The parts are JSON-encoded and hashed, so any comparable parameter set
// (URLs, filters, caps) produces a stable key: "namespace:sha256hex".
func Key(namespace string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", namespace, hex.EncodeToString(sum[:]))
}

// Hash computes the SHA-256 hash of data as a 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
