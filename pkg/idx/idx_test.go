package idx

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	a := New()
	b := New()
	require.NotEqual(t, a, b)
	require.Len(t, a.String(), 26)
	require.False(t, a.IsZero())
}

func TestNewAtIsSortable(t *testing.T) {
	t.Parallel()

	base := time.Now().UTC()
	ids := []string{
		NewAt(base.Add(2 * time.Second)).String(),
		NewAt(base).String(),
		NewAt(base.Add(time.Second)).String(),
	}

	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	require.Equal(t, []string{ids[1], ids[2], ids[0]}, sorted)
}

func TestParse(t *testing.T) {
	t.Parallel()

	id := New()
	parsed, err := Parse(" " + id.String() + " ")
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	for _, bad := range []string{"", "nope", "0000000000000000000000000!"} {
		_, err := Parse(bad)
		require.ErrorIs(t, err, ErrInvalid)
	}
}
