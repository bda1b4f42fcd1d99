package listq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var testRegistry = Registry{
	"username": {Column: "username", Type: String, Searchable: true, Sortable: true},
	"email":    {Column: "email", Type: String, Searchable: true, Sortable: true},
	"active":   {Column: "active", Type: Bool},
	"attempts": {Column: "attempts", Type: Int, Sortable: true},
}

func TestBuildSearch(t *testing.T) {
	t.Parallel()

	t.Run("empty term matches all", func(t *testing.T) {
		p := Build(testRegistry, Request{Search: "   "})
		require.True(t, p.IsEmpty())
		require.Empty(t, p.Args)
	})

	t.Run("term ORs searchable fields in stable order", func(t *testing.T) {
		p := Build(testRegistry, Request{Search: "Alice"})
		require.Equal(t, "lower(email) LIKE ? OR lower(username) LIKE ?", p.Where)
		require.Equal(t, []any{"%alice%", "%alice%"}, p.Args)
	})

	t.Run("non-searchable fields are excluded", func(t *testing.T) {
		reg := Registry{"active": {Column: "active", Type: Bool}}
		p := Build(reg, Request{Search: "x"})
		require.True(t, p.IsEmpty())
	})
}

func TestBuildFilters(t *testing.T) {
	t.Parallel()

	t.Run("bool filter", func(t *testing.T) {
		p := Build(testRegistry, Request{Filters: map[string]string{"active": "true"}})
		require.Equal(t, "active = ?", p.Where)
		require.Equal(t, []any{1}, p.Args)

		p = Build(testRegistry, Request{Filters: map[string]string{"active": "FALSE"}})
		require.Equal(t, []any{0}, p.Args)
	})

	t.Run("bad bool value is skipped", func(t *testing.T) {
		p := Build(testRegistry, Request{Filters: map[string]string{"active": "yes"}})
		require.True(t, p.IsEmpty())
	})

	t.Run("int filter", func(t *testing.T) {
		p := Build(testRegistry, Request{Filters: map[string]string{"attempts": "3"}})
		require.Equal(t, "attempts = ?", p.Where)
		require.Equal(t, []any{int64(3)}, p.Args)
	})

	t.Run("bad int value is skipped", func(t *testing.T) {
		p := Build(testRegistry, Request{Filters: map[string]string{"attempts": "many"}})
		require.True(t, p.IsEmpty())
	})

	t.Run("string equality is case-insensitive", func(t *testing.T) {
		p := Build(testRegistry, Request{Filters: map[string]string{"username": "Alice"}})
		require.Equal(t, "lower(username) = ?", p.Where)
		require.Equal(t, []any{"alice"}, p.Args)
	})

	t.Run("wildcards switch to LIKE", func(t *testing.T) {
		p := Build(testRegistry, Request{Filters: map[string]string{"email": "*@Example.com"}})
		require.Equal(t, "lower(email) LIKE ?", p.Where)
		require.Equal(t, []any{"%@example.com"}, p.Args)
	})

	t.Run("unknown fields and blanks are skipped", func(t *testing.T) {
		p := Build(testRegistry, Request{Filters: map[string]string{
			"password": "secret",
			"username": "  ",
		}})
		require.True(t, p.IsEmpty())
	})

	t.Run("multiple filters AND in sorted field order", func(t *testing.T) {
		p := Build(testRegistry, Request{Filters: map[string]string{
			"username": "alice",
			"active":   "true",
		}})
		require.Equal(t, "active = ? AND lower(username) = ?", p.Where)
		require.Equal(t, []any{1, "alice"}, p.Args)
	})
}

func TestBuildCombinesSearchAndFilters(t *testing.T) {
	t.Parallel()

	p := Build(testRegistry, Request{
		Search:  "smith",
		Filters: map[string]string{"active": "true"},
	})
	require.Equal(t, "(lower(email) LIKE ? OR lower(username) LIKE ?) AND (active = ?)", p.Where)
	require.Equal(t, []any{"%smith%", "%smith%", 1}, p.Args)
}

func TestSortColumn(t *testing.T) {
	t.Parallel()

	require.Equal(t, "username", testRegistry.SortColumn("username", "created_at"))
	require.Equal(t, "created_at", testRegistry.SortColumn("active", "created_at"))
	require.Equal(t, "created_at", testRegistry.SortColumn("nope", "created_at"))
	require.Equal(t, "created_at", testRegistry.SortColumn("", "created_at"))
}
