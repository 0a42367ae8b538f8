package table

import "sort"

// CountRow is one group in a count aggregation.
type CountRow struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// StatRow is one group in a sum/mean aggregation.
type StatRow struct {
	Key   string  `json:"key"`
	Sum   float64 `json:"sum"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// KeyFunc maps a cell to its group key. Returning ok=false drops the row from
// the aggregation, which is how absent keys disappear from results.
type KeyFunc func(Cell) (string, bool)

func defaultKey(c Cell) (string, bool) {
	if c.IsAbsent() {
		return "", false
	}
	return c.Key(), true
}

// GroupCount counts rows per distinct value of col, largest group first.
// A missing column or an empty table yields an empty result.
func GroupCount(t Table, col string) []CountRow {
	return GroupCountBy(t, col, defaultKey)
}

// GroupCountBy is GroupCount with a caller-supplied key derivation.
func GroupCountBy(t Table, col string, key KeyFunc) []CountRow {
	i := t.ColIndex(col)
	if i < 0 {
		return nil
	}
	counts := map[string]int{}
	for _, row := range t.Rows {
		if i >= len(row) {
			continue
		}
		k, ok := key(row[i])
		if !ok {
			continue
		}
		counts[k]++
	}
	out := make([]CountRow, 0, len(counts))
	for k, n := range counts {
		out = append(out, CountRow{Key: k, Count: n})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Count != out[b].Count {
			return out[a].Count > out[b].Count
		}
		return out[a].Key < out[b].Key
	})
	return out
}

// GroupStats sums and averages valCol per distinct value of keyCol. Rows with
// an absent key are dropped; rows with an absent value count toward the group
// but not toward its sum or mean. Groups are ordered by key.
func GroupStats(t Table, keyCol, valCol string) []StatRow {
	ki, vi := t.ColIndex(keyCol), t.ColIndex(valCol)
	if ki < 0 || vi < 0 {
		return nil
	}
	type acc struct {
		sum float64
		n   int
		all int
	}
	groups := map[string]*acc{}
	for _, row := range t.Rows {
		if ki >= len(row) || vi >= len(row) {
			continue
		}
		k, ok := defaultKey(row[ki])
		if !ok {
			continue
		}
		g := groups[k]
		if g == nil {
			g = &acc{}
			groups[k] = g
		}
		g.all++
		if v := row[vi]; v.Kind() == KindNumber {
			g.sum += v.Num()
			g.n++
		}
	}
	out := make([]StatRow, 0, len(groups))
	for k, g := range groups {
		r := StatRow{Key: k, Sum: g.sum, Count: g.all}
		if g.n > 0 {
			r.Mean = g.sum / float64(g.n)
		}
		out = append(out, r)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Key < out[b].Key })
	return out
}

// TopNByCount returns at most n groups of GroupCount.
func TopNByCount(t Table, col string, n int) []CountRow {
	rows := GroupCount(t, col)
	if n >= 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// SumColumn totals the numeric cells of col. Missing column or no numeric
// cells yield zero.
func SumColumn(t Table, col string) float64 {
	i := t.ColIndex(col)
	if i < 0 {
		return 0
	}
	var sum float64
	for _, row := range t.Rows {
		if i < len(row) && row[i].Kind() == KindNumber {
			sum += row[i].Num()
		}
	}
	return sum
}

// MeanColumn averages the numeric cells of col, ignoring absent and
// non-numeric cells. An empty column yields zero.
func MeanColumn(t Table, col string) float64 {
	i := t.ColIndex(col)
	if i < 0 {
		return 0
	}
	var sum float64
	var n int
	for _, row := range t.Rows {
		if i < len(row) && row[i].Kind() == KindNumber {
			sum += row[i].Num()
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// CountDistinct counts distinct non-absent values of col.
func CountDistinct(t Table, col string) int {
	i := t.ColIndex(col)
	if i < 0 {
		return 0
	}
	seen := map[string]struct{}{}
	for _, row := range t.Rows {
		if i >= len(row) || row[i].IsAbsent() {
			continue
		}
		seen[row[i].Key()] = struct{}{}
	}
	return len(seen)
}

// CountWhere counts rows whose col cell satisfies pred. Absent cells are
// passed through so predicates can match on absence (approval alerts do).
func CountWhere(t Table, col string, pred func(Cell) bool) int {
	i := t.ColIndex(col)
	if i < 0 {
		return 0
	}
	var n int
	for _, row := range t.Rows {
		var c Cell
		if i < len(row) {
			c = row[i]
		}
		if pred(c) {
			n++
		}
	}
	return n
}

// DistinctValues returns the sorted distinct non-absent values of col, used to
// populate filter option lists.
func DistinctValues(t Table, col string) []string {
	i := t.ColIndex(col)
	if i < 0 {
		return nil
	}
	seen := map[string]struct{}{}
	for _, row := range t.Rows {
		if i >= len(row) || row[i].IsAbsent() {
			continue
		}
		seen[row[i].Key()] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
