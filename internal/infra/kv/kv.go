// Package kv provides the short-TTL key-value store used for first-seen
// memory, cluster memory and the enrichment cache. Two adapters exist: a
// Redis-backed store for deployments and an in-memory store for local runs
// and tests. All writes are best-effort from the caller's point of view.
package kv

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"time"
)

// Namespace prefixes for KV keys.
const (
	ItemPrefix    = "item:"
	ClusterPrefix = "cluster:"
	EnrichPrefix  = "enrich:"
)

// Default TTLs per record class.
const (
	FirstSeenTTL = 7 * 24 * time.Hour
	ClusterTTL   = 7 * 24 * time.Hour
	EnrichTTL    = time.Hour
)

// Store is the KV contract. Get reports presence explicitly so that a missing
// key is not an error; List iterates all pages for the given prefix.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// HashKey derives the canonical content-hashed key suffix: base64url of the
// SHA-256 of the identifier. Long URLs can never collide by truncation.
func HashKey(id string) string {
	sum := sha256.Sum256([]byte(id))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
