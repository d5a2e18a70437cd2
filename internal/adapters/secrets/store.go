package secrets

import (
	"context"
	"time"
)

// Secret is a retrieved secret with its backend metadata.
type Secret struct {
	Value     string
	Version   string
	Metadata  map[string]string
	CreatedAt string
}

// Store retrieves runtime secrets such as the database password.
// Backends: local filesystem (development), AWS Secrets Manager,
// HashiCorp Vault.
type Store interface {
	// GetSecret retrieves a secret by its path/name. Path format depends
	// on the backend:
	//   - local: relative file path under the base directory
	//   - AWS:   "subscription-tracker/db/password" or full ARN
	//   - Vault: KV path under the mount, e.g. "subscription-tracker/db"
	GetSecret(ctx context.Context, path string) (*Secret, error)

	// PutSecret creates or updates a secret and returns the new version
	// identifier. Used by provisioning tooling, not the server itself.
	PutSecret(ctx context.Context, path, value string, metadata map[string]string) (string, error)
}

// secretCache is a simple in-memory TTL cache shared by the remote
// backends so hot paths do not hit the secret manager on every lookup.
type secretCache struct {
	entries map[string]*cacheEntry
	enabled bool
	ttl     time.Duration
}

type cacheEntry struct {
	secret    *Secret
	expiresAt time.Time
}

func newSecretCache(enabled bool, ttl time.Duration) *secretCache {
	return &secretCache{
		entries: make(map[string]*cacheEntry),
		enabled: enabled,
		ttl:     ttl,
	}
}

func (c *secretCache) get(key string) *Secret {
	if !c.enabled {
		return nil
	}
	entry, ok := c.entries[key]
	if !ok {
		return nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil
	}
	return entry.secret
}

func (c *secretCache) set(key string, secret *Secret) {
	if !c.enabled {
		return
	}
	c.entries[key] = &cacheEntry{
		secret:    secret,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *secretCache) invalidate(key string) {
	delete(c.entries, key)
}
