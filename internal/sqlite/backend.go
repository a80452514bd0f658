package sqlite

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/karte/internal/search"
	"github.com/mesh-intelligence/karte/pkg/types"
)

// dsnPragmas turns on foreign key enforcement and waits on a locked file
// instead of failing immediately.
const dsnPragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// Backend implements types.Store on a single SQLite file.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	tables   map[string]*table

	// now returns the current time; tests replace it to control timestamps.
	now func() time.Time
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		tables: make(map[string]*table),
		now:    time.Now,
	}
}

// GetTable returns a Table for the specified table name.
// Returns ErrTableNotFound if the table name is not recognized.
// Returns ErrStoreDetached if the backend is not attached.
func (b *Backend) GetTable(name string) (types.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	t, ok := b.tables[name]
	if !ok {
		return nil, types.ErrTableNotFound
	}
	return t, nil
}

// Attach opens the database described by config, creating DataDir if it
// does not exist, and creates any missing tables. Existing data is kept.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", config.DBPath()+dsnPragmas)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	// One connection serialises writers and keeps pragmas in effect.
	db.SetMaxOpenConns(1)

	if err := initialize(db); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config
	b.attached = true

	for _, name := range types.StandardTableNames {
		b.tables[name] = newTable(b, name)
	}

	return nil
}

// Detach closes the database. After Detach, all operations return
// ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.tables = make(map[string]*table)

	return nil
}

// Config returns the configuration the backend was attached with.
func (b *Backend) Config() types.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// Initialize creates any missing tables and indexes. It never drops data
// and may be called any number of times.
func (b *Backend) Initialize() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	return initialize(b.db)
}

// Reset drops and recreates all tables in one transaction. Every record is
// lost and IDs start again from 1.
func (b *Backend) Reset() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	for _, stmt := range dropDDL {
		if _, err := tx.Exec(stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("drop table: %w", err)
		}
	}
	if err := applySchema(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

// Search runs the cross-entity search over all four tables.
func (b *Backend) Search(query string) ([]types.SearchHit, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return search.Run(rowSource{db: b.db}, query)
}

// Export writes every row of the named table to w.
func (b *Backend) Export(name string, format types.ExportFormat, w io.Writer) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if !types.IsTableName(name) {
		return types.ErrTableNotFound
	}
	return exportTable(b.db, name, format, w)
}

// timestamp returns the current time as stored: UTC, second precision,
// RFC 3339.
func (b *Backend) timestamp() string {
	return b.now().UTC().Truncate(time.Second).Format(time.RFC3339)
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func initialize(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema: %w", err)
	}
	if err := applySchema(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func applySchema(e execer) error {
	for _, stmt := range schemaDDL {
		if _, err := e.Exec(stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	for _, stmt := range indexDDL {
		if _, err := e.Exec(stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
