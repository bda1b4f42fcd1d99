package listq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPage(t *testing.T) {
	t.Parallel()

	t.Run("middle page", func(t *testing.T) {
		p := NewPage([]string{"a", "b"}, 100, 25, 1, 10)
		require.Equal(t, int64(100), p.TotalRecords)
		require.Equal(t, int64(25), p.FilteredRecords)
		require.Equal(t, 3, p.TotalPages)
		require.Equal(t, 1, p.CurrentPage)
		require.True(t, p.HasNext)
		require.True(t, p.HasPrevious)
	})

	t.Run("first page", func(t *testing.T) {
		p := NewPage([]string{"a"}, 25, 25, 0, 10)
		require.True(t, p.HasNext)
		require.False(t, p.HasPrevious)
	})

	t.Run("last page", func(t *testing.T) {
		p := NewPage([]string{"a"}, 25, 25, 2, 10)
		require.False(t, p.HasNext)
		require.True(t, p.HasPrevious)
	})

	t.Run("exact multiple has no ragged page", func(t *testing.T) {
		p := NewPage([]string{}, 20, 20, 1, 10)
		require.Equal(t, 2, p.TotalPages)
		require.False(t, p.HasNext)
	})

	t.Run("empty result set", func(t *testing.T) {
		p := NewPage[string](nil, 0, 0, 0, 10)
		require.NotNil(t, p.Data)
		require.Empty(t, p.Data)
		require.Equal(t, 0, p.TotalPages)
		require.False(t, p.HasNext)
		require.False(t, p.HasPrevious)
	})

	t.Run("page beyond the end keeps metadata", func(t *testing.T) {
		p := NewPage[string](nil, 5, 5, 9, 10)
		require.Empty(t, p.Data)
		require.Equal(t, 1, p.TotalPages)
		require.Equal(t, 9, p.CurrentPage)
		require.False(t, p.HasNext)
		require.True(t, p.HasPrevious)
	})

	t.Run("inputs are clamped", func(t *testing.T) {
		p := NewPage([]string{"a"}, 1, 1, -3, 0)
		require.Equal(t, 0, p.CurrentPage)
		require.Equal(t, 1, p.PageSize)

		p = NewPage([]string{"a"}, 1, 1, 0, 9999)
		require.Equal(t, MaxPageSize, p.PageSize)
	})
}
