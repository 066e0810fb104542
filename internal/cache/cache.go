// Package cache provides the layered response cache used by the LLM
// observation layer, so repeated evaluations of the same results do
// not re-spend API calls.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is a byte-oriented cache with per-entry TTL.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a stable cache key from arbitrary request material
// (model name plus prompt). The version segment invalidates old
// entries when the key scheme changes.
func Key(material string) string {
	hash := sha256.Sum256([]byte(material))
	return "matzpen:v1:" + hex.EncodeToString(hash[:])
}
