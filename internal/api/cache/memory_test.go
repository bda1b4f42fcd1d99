package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemorySetGet(t *testing.T) {
	t.Parallel()
	m := NewMemory(time.Minute)

	_, ok := m.Get("missing")
	require.False(t, ok)

	m.Set("roles:all", []byte(`["a"]`), 0, TagRoles)
	got, ok := m.Get("roles:all")
	require.True(t, ok)
	require.Equal(t, []byte(`["a"]`), got)

	// Overwrite replaces the value.
	m.Set("roles:all", []byte(`["b"]`), 0, TagRoles)
	got, _ = m.Get("roles:all")
	require.Equal(t, []byte(`["b"]`), got)
}

func TestMemoryTagInvalidation(t *testing.T) {
	t.Parallel()
	m := NewMemory(time.Minute)

	m.Set("roles:all", []byte("r"), 0, TagRoles)
	m.Set("menus:user:u1", []byte("m"), 0, TagMenus, TagRoles, TagUsers)
	m.Set("permissions:all", []byte("p"), 0, TagPermissions)

	m.InvalidateTags(TagRoles)

	_, ok := m.Get("roles:all")
	require.False(t, ok)
	_, ok = m.Get("menus:user:u1")
	require.False(t, ok)

	// Unrelated tags survive.
	_, ok = m.Get("permissions:all")
	require.True(t, ok)
}

func TestMemoryExpiry(t *testing.T) {
	t.Parallel()

	now := time.Now()
	m := NewMemory(time.Minute)
	m.now = func() time.Time { return now }

	m.Set("k", []byte("v"), 10*time.Second)

	_, ok := m.Get("k")
	require.True(t, ok)

	now = now.Add(11 * time.Second)
	_, ok = m.Get("k")
	require.False(t, ok)

	// The expired entry is gone, not just hidden.
	m.mu.RLock()
	_, present := m.entries["k"]
	m.mu.RUnlock()
	require.False(t, present)
}

func TestMemoryTTLClamping(t *testing.T) {
	t.Parallel()

	now := time.Now()
	m := NewMemory(0) // clamps to MaxTTL
	m.now = func() time.Time { return now }

	m.Set("long", []byte("v"), 24*time.Hour)

	now = now.Add(MaxTTL + time.Second)
	_, ok := m.Get("long")
	require.False(t, ok)
}

func TestMemoryDelete(t *testing.T) {
	t.Parallel()
	m := NewMemory(time.Minute)

	m.Set("k", []byte("v"), 0, TagUsers)
	m.Delete("k")

	_, ok := m.Get("k")
	require.False(t, ok)

	// Deleting again is a no-op.
	m.Delete("k")

	// The tag index no longer references the key.
	m.mu.RLock()
	_, present := m.byTag[TagUsers]
	m.mu.RUnlock()
	require.False(t, present)
}
