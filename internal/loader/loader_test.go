package loader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fytours/tourdash/internal/table"
)

func TestToCellDateParsing(t *testing.T) {
	got := toCell("2024-01-15", true)
	require.Equal(t, table.KindTime, got.Kind())
	require.True(t, got.Time().Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))

	got = toCell("2024-01-15 10:30:00", true)
	require.Equal(t, table.KindTime, got.Kind())

	got = toCell("2024-01-15T10:30:00Z", true)
	require.Equal(t, table.KindTime, got.Kind())
}

func TestToCellUnparseableDateBecomesAbsent(t *testing.T) {
	require.True(t, toCell("14 nights", true).IsAbsent())
	require.True(t, toCell("", true).IsAbsent())
	require.True(t, toCell(nil, true).IsAbsent())
	// Non-string garbage on a declared date column also degrades to absent.
	require.True(t, toCell(3.14, true).IsAbsent())
}

func TestToCellScalarKinds(t *testing.T) {
	require.Equal(t, "x", toCell("x", false).Str())
	require.Equal(t, "x", toCell([]byte("x"), false).Str())
	require.Equal(t, 7.0, toCell(int64(7), false).Num())
	require.Equal(t, 2.5, toCell(float64(2.5), false).Num())
	require.Equal(t, 1.0, toCell(true, false).Num())
	require.True(t, toCell(nil, false).IsAbsent())

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.True(t, toCell(ts, false).Time().Equal(ts))
}

func TestQueriesCoverAllLogicalTables(t *testing.T) {
	names := TableNames()
	require.Len(t, names, 9)
	for _, name := range names {
		require.Contains(t, Queries, name)
	}
	for name := range DateColumns {
		require.Contains(t, Queries, name)
	}
}

func TestCacheKeysAreStableAndDistinct(t *testing.T) {
	a := CacheKeys()
	b := CacheKeys()
	require.Equal(t, a, b)
	seen := map[string]struct{}{}
	for _, k := range a {
		seen[k] = struct{}{}
	}
	require.Len(t, seen, len(a))
}
