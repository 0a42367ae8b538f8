package table

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func statusTable() Table {
	t := New("status", "amount")
	t.AppendRow(String("Confirmed"), Number(100))
	t.AppendRow(String("Pending"), Number(50))
	t.AppendRow(String("Confirmed"), Number(200))
	t.AppendRow(Absent(), Number(999))
	t.AppendRow(String("Confirmed"), Absent())
	return t
}

func TestGroupCount(t *testing.T) {
	got := GroupCount(statusTable(), "status")
	require.Equal(t, []CountRow{
		{Key: "Confirmed", Count: 3},
		{Key: "Pending", Count: 1},
	}, got)
}

func TestGroupCountEmptyTable(t *testing.T) {
	empty := New("status")
	require.Empty(t, GroupCount(empty, "status"))
}

func TestGroupCountMissingColumn(t *testing.T) {
	require.Empty(t, GroupCount(statusTable(), "no_such_column"))
}

func TestGroupCountSkipsAbsentKeys(t *testing.T) {
	for _, row := range GroupCount(statusTable(), "status") {
		require.NotEmpty(t, row.Key)
	}
}

func TestGroupStats(t *testing.T) {
	got := GroupStats(statusTable(), "status", "amount")
	require.Len(t, got, 2)
	// sorted by key: Confirmed then Pending
	require.Equal(t, "Confirmed", got[0].Key)
	require.Equal(t, 300.0, got[0].Sum)
	require.Equal(t, 150.0, got[0].Mean) // absent amount excluded from mean
	require.Equal(t, 3, got[0].Count)
	require.Equal(t, "Pending", got[1].Key)
	require.Equal(t, 50.0, got[1].Sum)
}

func TestTopNByCount(t *testing.T) {
	tab := New("dest")
	for _, d := range []string{"Kigali", "Kigali", "Kigali", "Nairobi", "Nairobi", "Zanzibar"} {
		tab.AppendRow(String(d))
	}
	got := TopNByCount(tab, "dest", 2)
	require.Equal(t, []CountRow{
		{Key: "Kigali", Count: 3},
		{Key: "Nairobi", Count: 2},
	}, got)
}

func TestSumMeanColumn(t *testing.T) {
	tab := statusTable()
	require.Equal(t, 1349.0, SumColumn(tab, "amount"))
	require.Equal(t, 1349.0/4, MeanColumn(tab, "amount"))
	require.Equal(t, 0.0, SumColumn(tab, "missing"))
	require.Equal(t, 0.0, MeanColumn(New("amount"), "amount"))
}

func TestCountDistinct(t *testing.T) {
	require.Equal(t, 2, CountDistinct(statusTable(), "status"))
	require.Equal(t, 0, CountDistinct(statusTable(), "missing"))
}

func TestCountWhereSeesAbsent(t *testing.T) {
	n := CountWhere(statusTable(), "status", func(c Cell) bool { return c.IsAbsent() })
	require.Equal(t, 1, n)
}

func TestDistinctValues(t *testing.T) {
	require.Equal(t, []string{"Confirmed", "Pending"}, DistinctValues(statusTable(), "status"))
	require.Nil(t, DistinctValues(statusTable(), "missing"))
}
