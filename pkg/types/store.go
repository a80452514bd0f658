package types

import (
	"errors"
	"io"
)

// Store defines the record store: four tables, a cross-entity search,
// a verbatim export and a destructive reset.
type Store interface {
	// GetTable returns the Table for the given name.
	// Returns ErrTableNotFound if the name is not a standard table.
	GetTable(name string) (Table, error)

	// Attach opens the store described by config and creates the tables
	// that do not exist yet. Returns ErrAlreadyAttached if called while
	// already attached.
	Attach(config Config) error

	// Detach releases store resources. Idempotent: multiple calls succeed.
	// After Detach, operations return ErrStoreDetached.
	Detach() error

	// Search returns every record whose stringified columns contain query,
	// case-insensitively, most recently updated first.
	Search(query string) ([]SearchHit, error)

	// Export writes every row of the named table to w in the given format.
	Export(table string, format ExportFormat, w io.Writer) error

	// Reset drops and recreates all tables. Irreversible.
	Reset() error
}

// ExportFormat selects the serialisation used by Store.Export.
type ExportFormat string

// Supported export formats.
const (
	ExportCSV   ExportFormat = "csv"
	ExportJSONL ExportFormat = "jsonl"
)

// Store lifecycle errors.
var (
	ErrStoreDetached       = errors.New("store is detached")
	ErrAlreadyAttached     = errors.New("store is already attached")
	ErrTableNotFound       = errors.New("table not found")
	ErrExportFormatUnknown = errors.New("unknown export format")
)
