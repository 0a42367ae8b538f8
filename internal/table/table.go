package table

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Kind discriminates the cell variants.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindString
	KindNumber
	KindTime
)

// Cell is a single table value. The zero value is the absent marker, which is
// distinct from the empty string and from zero.
type Cell struct {
	kind Kind
	str  string
	num  float64
	ts   time.Time
}

func Absent() Cell          { return Cell{} }
func String(s string) Cell  { return Cell{kind: KindString, str: s} }
func Number(f float64) Cell { return Cell{kind: KindNumber, num: f} }
func Time(t time.Time) Cell { return Cell{kind: KindTime, ts: t} }

func (c Cell) Kind() Kind      { return c.kind }
func (c Cell) IsAbsent() bool  { return c.kind == KindAbsent }
func (c Cell) Str() string     { return c.str }
func (c Cell) Num() float64    { return c.num }
func (c Cell) Time() time.Time { return c.ts }

// Key renders the cell as a grouping key. Absent cells have no key.
func (c Cell) Key() string {
	switch c.kind {
	case KindString:
		return c.str
	case KindNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case KindTime:
		return c.ts.Format("2006-01-02")
	default:
		return ""
	}
}

type cellJSON struct {
	S *string  `json:"s,omitempty"`
	N *float64 `json:"n,omitempty"`
	T *string  `json:"t,omitempty"`
}

// MarshalJSON keeps the absent marker distinct from "" and 0 so cached tables
// round-trip through Redis without losing it.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case KindString:
		return json.Marshal(cellJSON{S: &c.str})
	case KindNumber:
		return json.Marshal(cellJSON{N: &c.num})
	case KindTime:
		s := c.ts.Format(time.RFC3339Nano)
		return json.Marshal(cellJSON{T: &s})
	default:
		return []byte("null"), nil
	}
}

func (c *Cell) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = Absent()
		return nil
	}
	var v cellJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch {
	case v.S != nil:
		*c = String(*v.S)
	case v.N != nil:
		*c = Number(*v.N)
	case v.T != nil:
		t, err := time.Parse(time.RFC3339Nano, *v.T)
		if err != nil {
			return fmt.Errorf("table: bad time cell %q: %w", *v.T, err)
		}
		*c = Time(t)
	default:
		*c = Absent()
	}
	return nil
}

// Table is an immutable-by-convention column/row grid. Operations on tables
// allocate new tables and never write through to their input.
type Table struct {
	Cols []string `json:"cols"`
	Rows [][]Cell `json:"rows"`
}

func New(cols ...string) Table {
	return Table{Cols: cols}
}

func (t *Table) AppendRow(cells ...Cell) {
	t.Rows = append(t.Rows, cells)
}

func (t Table) NumRows() int { return len(t.Rows) }

// ColIndex returns the position of the named column, or -1 when the column
// does not exist.
func (t Table) ColIndex(name string) int {
	for i, c := range t.Cols {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, column name), or the absent marker when the
// column is missing or the row is ragged.
func (t Table) Cell(row int, col string) Cell {
	i := t.ColIndex(col)
	if i < 0 || row < 0 || row >= len(t.Rows) || i >= len(t.Rows[row]) {
		return Absent()
	}
	return t.Rows[row][i]
}

// Select returns a new table holding the rows at the given indexes, in the
// given order. Row slices are shared with the source; cells are value types,
// so results are read-only views rather than copies.
func (t Table) Select(idx []int) Table {
	out := Table{Cols: t.Cols, Rows: make([][]Cell, 0, len(idx))}
	for _, i := range idx {
		if i >= 0 && i < len(t.Rows) {
			out.Rows = append(out.Rows, t.Rows[i])
		}
	}
	return out
}
