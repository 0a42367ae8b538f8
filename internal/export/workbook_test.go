package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fytours/tourdash/internal/table"
)

func TestWriteWorkbookOneSheetPerTable(t *testing.T) {
	bookings := table.New("booking_id", "booking_date", "total_amount")
	bookings.AppendRow(table.String("b1"),
		table.Time(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)), table.Number(1250.5))
	bookings.AppendRow(table.String("b2"), table.Absent(), table.Number(300))

	payments := table.New("amount")
	payments.AppendRow(table.Number(42))

	var buf bytes.Buffer
	err := WriteWorkbook(&buf, map[string]table.Table{
		"payments": payments,
		"bookings": bookings,
	})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	// Sheets come out in sorted name order.
	require.Equal(t, "bookings.csv", zr.File[0].Name)
	require.Equal(t, "payments.csv", zr.File[1].Name)

	records := readSheet(t, zr.File[0])
	require.Equal(t, [][]string{
		{"booking_id", "booking_date", "total_amount"},
		{"b1", "2024-01-15 00:00:00", "1250.5"},
		{"b2", "", "300"},
	}, records)
}

func TestWriteWorkbookEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	err := WriteWorkbook(&buf, map[string]table.Table{
		"revenues": table.New("date", "net_income"),
	})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)

	records := readSheet(t, zr.File[0])
	require.Equal(t, [][]string{{"date", "net_income"}}, records)
}

func readSheet(t *testing.T, f *zip.File) [][]string {
	t.Helper()
	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	return records
}
