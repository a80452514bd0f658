package sqlite

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/karte/pkg/types"
)

// fields holds one scanned row with every column read as nullable text.
// Reading through text keeps the search haystack and the typed decoders on
// the same values the database returned.
type fields []sql.NullString

// scanFields scans the current row of rows into n nullable strings.
func scanFields(rows *sql.Rows, n int) (fields, error) {
	f := make(fields, n)
	dest := make([]any, n)
	for i := range f {
		dest[i] = &f[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	return f, nil
}

// timestampLayouts are the layouts accepted when reading stored timestamps.
// Rows written by this package always use the first.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	types.DateLayout,
}

func (f fields) str(i int) string {
	return f[i].String
}

// ptr returns the column as a string pointer, nil for NULL.
func (f fields) ptr(i int) *string {
	if !f[i].Valid {
		return nil
	}
	s := f[i].String
	return &s
}

func (f fields) int64(i int) (int64, error) {
	if !f[i].Valid || f[i].String == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(f[i].String, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing integer %q: %w", f[i].String, err)
	}
	return n, nil
}

func (f fields) optInt64(i int) (*int64, error) {
	if !f[i].Valid || f[i].String == "" {
		return nil, nil
	}
	n, err := f.int64(i)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (f fields) bool(i int) bool {
	switch strings.ToLower(f[i].String) {
	case "1", "true":
		return true
	}
	return false
}

// time parses a stored timestamp. Unparseable or NULL values yield the zero
// time so a damaged row still lists, sorted last.
func (f fields) time(i int) time.Time {
	if !f[i].Valid {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, f[i].String); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// date parses a stored calendar date, nil for NULL or unparseable values.
func (f fields) date(i int) *time.Time {
	t := f.time(i)
	if t.IsZero() {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

// ptrs returns the first n columns as string pointers for the search
// haystack.
func (f fields) ptrs(n int) []*string {
	out := make([]*string, n)
	for i := 0; i < n; i++ {
		out[i] = f.ptr(i)
	}
	return out
}

// nullString stores empty optional text as NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullDate(d *time.Time) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Format(types.DateLayout), Valid: true}
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func toInt64(v any) (int64, bool) {
	n, ok := toInt(v)
	return int64(n), ok
}

// queryOne runs query and decodes the single row it returns.
// Returns ErrNotFound when there is no row.
func queryOne[T any](db *sql.DB, n int, decode func(fields) (T, error), query string, args ...any) (T, error) {
	var zero T
	rows, err := db.Query(query, args...)
	if err != nil {
		return zero, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return zero, err
		}
		return zero, types.ErrNotFound
	}
	f, err := scanFields(rows, n)
	if err != nil {
		return zero, err
	}
	return decode(f)
}

// queryAll runs query and decodes every row it returns.
func queryAll[T any](db *sql.DB, n int, decode func(fields) (T, error), query string, args ...any) ([]any, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []any
	for rows.Next() {
		f, err := scanFields(rows, n)
		if err != nil {
			return nil, err
		}
		v, err := decode(f)
		if err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	return results, rows.Err()
}
