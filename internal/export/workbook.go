package export

import (
	"archive/zip"
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fytours/tourdash/internal/metrics"
	"github.com/fytours/tourdash/internal/table"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

// WriteWorkbook serializes all loaded tables into a zip container with one
// CSV sheet per logical table, unfiltered, in sorted sheet order. Absent
// cells serialize as empty fields.
func WriteWorkbook(w io.Writer, tables map[string]table.Table) error {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	zw := zip.NewWriter(w)
	for _, name := range names {
		sheet, err := zw.Create(name + ".csv")
		if err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
		if err := writeSheet(sheet, tables[name]); err != nil {
			return fmt.Errorf("write sheet %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	metrics.ExportRunsTotal.Inc()
	return nil
}

func writeSheet(w io.Writer, t table.Table) error {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	cw := csv.NewWriter(buf)
	cw.UseCRLF = true

	if err := cw.Write(t.Cols); err != nil {
		return err
	}
	pending := 0
	record := make([]string, len(t.Cols))
	for r := range t.Rows {
		for i, col := range t.Cols {
			record[i] = formatCell(t.Cell(r, col))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
		pending++
		if pending >= csvFlushEvery {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}
			pending = 0
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return buf.Flush()
}

func formatCell(c table.Cell) string {
	switch c.Kind() {
	case table.KindString:
		return c.Str()
	case table.KindNumber:
		return strconv.FormatFloat(c.Num(), 'f', -1, 64)
	case table.KindTime:
		return c.Time().Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}
