package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/fytours/tourdash/internal/snapshot"
	"github.com/fytours/tourdash/internal/store"
	"github.com/fytours/tourdash/internal/table"
)

// dateLayouts are tried in order when a declared date column arrives as text.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Loader executes the fixed query set and materializes one in-memory table
// per logical table. Results go through the query cache when one is supplied.
type Loader struct {
	db    *store.DB
	cache *snapshot.Cache
	log   *zap.Logger
}

func New(db *store.DB, cache *snapshot.Cache, log *zap.Logger) *Loader {
	return &Loader{db: db, cache: cache, log: log}
}

// Load runs every table query independently. A single query failure is
// recorded against its table name and does not stop the remaining loads; an
// unreachable store fails the whole pass.
func (l *Loader) Load(ctx context.Context) (map[string]table.Table, map[string]error, error) {
	if err := l.db.Pool.Ping(ctx); err != nil {
		return nil, nil, fmt.Errorf("store unreachable: %w", err)
	}

	tables := make(map[string]table.Table, len(Queries))
	errs := make(map[string]error)
	for _, name := range TableNames() {
		t, err := l.loadTable(ctx, name)
		if err != nil {
			errs[name] = err
			continue
		}
		tables[name] = t
	}
	return tables, errs, nil
}

// CacheKeys lists the cache keys of every table query, for invalidation on
// forced refresh.
func CacheKeys() []string {
	keys := make([]string, 0, len(Queries))
	for _, name := range TableNames() {
		keys = append(keys, snapshot.QueryKey(name, Queries[name]))
	}
	return keys
}

func (l *Loader) loadTable(ctx context.Context, name string) (table.Table, error) {
	query := Queries[name]
	var t table.Table
	err := l.cache.GetOrLoad(ctx, snapshot.QueryKey(name, query), &t, func(ctx context.Context) (interface{}, error) {
		loaded, err := l.queryTable(ctx, name, query)
		if err != nil {
			return nil, err
		}
		return loaded, nil
	})
	if err != nil {
		return table.Table{}, fmt.Errorf("load %s: %w", name, err)
	}
	return t, nil
}

func (l *Loader) queryTable(ctx context.Context, name, query string) (table.Table, error) {
	rows, err := l.db.Pool.Query(ctx, query)
	if err != nil {
		return table.Table{}, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = string(f.Name)
	}
	dateCols := make(map[int]bool)
	for _, dc := range DateColumns[name] {
		for i, c := range cols {
			if c == dc {
				dateCols[i] = true
			}
		}
	}

	t := table.New(cols...)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return table.Table{}, err
		}
		cells := make([]table.Cell, len(values))
		for i, v := range values {
			cells[i] = toCell(v, dateCols[i])
		}
		t.AppendRow(cells...)
	}
	if err := rows.Err(); err != nil {
		return table.Table{}, err
	}
	l.log.Debug("table loaded", zap.String("table", name), zap.Int("rows", t.NumRows()))
	return t, nil
}

// toCell converts a driver value to a table cell. Declared date columns parse
// to the canonical time representation; unparseable values become absent and
// never raise.
func toCell(v interface{}, isDate bool) table.Cell {
	if v == nil {
		return table.Absent()
	}
	if isDate {
		return toDateCell(v)
	}
	switch x := v.(type) {
	case string:
		return table.String(x)
	case []byte:
		return table.String(string(x))
	case bool:
		if x {
			return table.Number(1)
		}
		return table.Number(0)
	case int:
		return table.Number(float64(x))
	case int16:
		return table.Number(float64(x))
	case int32:
		return table.Number(float64(x))
	case int64:
		return table.Number(float64(x))
	case float32:
		return table.Number(float64(x))
	case float64:
		return table.Number(x)
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return table.Absent()
		}
		return table.Number(f.Float64)
	case time.Time:
		return table.Time(x)
	default:
		return table.String(fmt.Sprint(x))
	}
}

func toDateCell(v interface{}) table.Cell {
	switch x := v.(type) {
	case time.Time:
		return table.Time(x)
	case string:
		return parseDate(x)
	case []byte:
		return parseDate(string(x))
	default:
		return table.Absent()
	}
}

func parseDate(s string) table.Cell {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return table.Time(t)
		}
	}
	return table.Absent()
}
