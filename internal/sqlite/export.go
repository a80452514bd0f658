package sqlite

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/mesh-intelligence/karte/pkg/types"
)

// exportTable dumps every row of name, in ID order, with values exactly as
// stored. The caller must hold the backend read lock and has validated name.
func exportTable(db *sql.DB, name string, format types.ExportFormat, w io.Writer) error {
	var write func(columns []string, values []any) error
	var flush func() error

	switch format {
	case types.ExportCSV, "":
		cw := csv.NewWriter(w)
		header := true
		write = func(columns []string, values []any) error {
			if header {
				header = false
				if err := cw.Write(columns); err != nil {
					return err
				}
			}
			if values == nil {
				return nil
			}
			record := make([]string, len(values))
			for i, v := range values {
				record[i] = csvValue(v)
			}
			return cw.Write(record)
		}
		flush = func() error {
			cw.Flush()
			return cw.Error()
		}
	case types.ExportJSONL:
		jw := newJSONLWriter(w)
		write = func(columns []string, values []any) error {
			if values == nil {
				return nil
			}
			return jw.writeRow(columns, values)
		}
		flush = jw.flush
	default:
		return types.ErrExportFormatUnknown
	}

	// name is one of types.StandardTableNames, never user text.
	rows, err := db.Query("SELECT * FROM " + name + " ORDER BY id")
	if err != nil {
		return fmt.Errorf("querying %s: %w", name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("reading %s columns: %w", name, err)
	}
	// The header is written even when the table is empty.
	if err := write(columns, nil); err != nil {
		return fmt.Errorf("writing %s header: %w", name, err)
	}

	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("scanning %s row: %w", name, err)
		}
		if err := write(columns, values); err != nil {
			return fmt.Errorf("writing %s row: %w", name, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading %s rows: %w", name, err)
	}
	return flush()
}

// csvValue renders a driver value for a CSV cell. NULL is an empty cell.
func csvValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
