// Package cache provides a small read-through cache for list and lookup
// results, invalidated by tag on every write to the underlying entity.
package cache

import "time"

// Cache stores serialized values under string keys. Each entry carries a set
// of tags; invalidating a tag synchronously removes every entry carrying it,
// so a read that follows a write never sees the pre-write value.
type Cache interface {
	// Get returns the cached value and whether it was present and fresh.
	Get(key string) ([]byte, bool)

	// Set stores value under key with the given tags. A ttl of 0 uses the
	// cache's default; ttls above the cap are clamped.
	Set(key string, value []byte, ttl time.Duration, tags ...string)

	// InvalidateTags drops every entry carrying any of the given tags.
	InvalidateTags(tags ...string)

	// Delete drops a single entry.
	Delete(key string)
}

// Entity tags used across the service. A write to an entity invalidates its
// tag; cached results that join entities carry every tag they depend on.
const (
	TagUsers       = "users"
	TagRoles       = "roles"
	TagPermissions = "permissions"
	TagMenus       = "menus"
)
