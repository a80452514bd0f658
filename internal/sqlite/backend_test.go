// Tests for the SQLite backend lifecycle: attach, detach, initialize, reset.
package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/karte/pkg/types"
)

// fakeClock hands out timestamps that advance by step on every call.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

// setupBackend attaches a backend to a fresh temp directory with a clock
// that advances one second per write.
func setupBackend(t *testing.T) (*Backend, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC), step: time.Second}
	b := NewBackend()
	b.now = clock.Now
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })
	return b, clock
}

func mustTable(t *testing.T, b *Backend, name string) types.Table {
	t.Helper()
	tbl, err := b.GetTable(name)
	require.NoError(t, err)
	return tbl
}

func mustInsertProject(t *testing.T, b *Backend, p *types.Project) int64 {
	t.Helper()
	id, err := mustTable(t, b, types.TableProjects).Insert(p)
	require.NoError(t, err)
	return id
}

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: tmpDir,
	}

	err := b.Attach(config)
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	dbPath := filepath.Join(tmpDir, types.DefaultDBFile)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("%s not created", types.DefaultDBFile)
	}

	err = b.Attach(config)
	if err != types.ErrAlreadyAttached {
		t.Errorf("expected ErrAlreadyAttached, got %v", err)
	}

	b.Detach()
}

func TestBackend_AttachCreatesDataDir(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested", "data")

	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir, DBFile: "cases.db"}))
	defer b.Detach()

	_, err := os.Stat(filepath.Join(dataDir, "cases.db"))
	assert.NoError(t, err)
}

func TestBackend_AttachRejectsInvalidConfig(t *testing.T) {
	b := NewBackend()
	err := b.Attach(types.Config{Backend: "postgres", DataDir: t.TempDir()})
	assert.ErrorIs(t, err, types.ErrBackendUnknown)

	_, err = b.GetTable(types.TableProjects)
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}

func TestBackend_Detach(t *testing.T) {
	b, _ := setupBackend(t)

	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach(), "second Detach should not error")

	_, err := b.GetTable(types.TableProjects)
	assert.ErrorIs(t, err, types.ErrStoreDetached)

	_, err = b.Search("anything")
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	assert.ErrorIs(t, b.Reset(), types.ErrStoreDetached)
	assert.ErrorIs(t, b.Initialize(), types.ErrStoreDetached)
}

func TestBackend_TableUseAfterDetach(t *testing.T) {
	b, _ := setupBackend(t)
	tbl := mustTable(t, b, types.TableProjects)
	require.NoError(t, b.Detach())

	_, err := tbl.Insert(&types.Project{Title: "late"})
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = tbl.Fetch(nil)
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}

func TestBackend_GetTable(t *testing.T) {
	b, _ := setupBackend(t)

	for _, name := range types.StandardTableNames {
		t.Run(name, func(t *testing.T) {
			tbl, err := b.GetTable(name)
			require.NoError(t, err)
			assert.NotNil(t, tbl)
		})
	}

	_, err := b.GetTable("invoices")
	assert.ErrorIs(t, err, types.ErrTableNotFound)
}

func TestBackend_InitializeIsIdempotent(t *testing.T) {
	b, _ := setupBackend(t)
	id := mustInsertProject(t, b, &types.Project{Title: "Keep me"})

	require.NoError(t, b.Initialize())
	require.NoError(t, b.Initialize())

	var count int
	require.NoError(t, b.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'projects'").Scan(&count))
	assert.Equal(t, 1, count)

	got, err := mustTable(t, b, types.TableProjects).Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Keep me", got.(*types.Project).Title)
}

func TestBackend_ReattachKeepsData(t *testing.T) {
	dir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	b := NewBackend()
	require.NoError(t, b.Attach(config))
	id := mustInsertProject(t, b, &types.Project{Title: "Persisted"})
	require.NoError(t, b.Detach())

	b = NewBackend()
	require.NoError(t, b.Attach(config))
	defer b.Detach()

	got, err := mustTable(t, b, types.TableProjects).Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Persisted", got.(*types.Project).Title)
}

func TestBackend_Reset(t *testing.T) {
	b, _ := setupBackend(t)
	pid := mustInsertProject(t, b, &types.Project{Title: "Acme"})
	_, err := mustTable(t, b, types.TableNotes).Insert(&types.Note{
		ProjectID: pid, NoteDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), Content: "hello",
	})
	require.NoError(t, err)
	_, err = mustTable(t, b, types.TableResources).Insert(&types.Resource{ProjectID: &pid, Title: "doc"})
	require.NoError(t, err)
	_, err = mustTable(t, b, types.TableIdeas).Insert(&types.Idea{Title: "idea"})
	require.NoError(t, err)

	require.NoError(t, b.Reset())

	for _, name := range types.StandardTableNames {
		got, err := mustTable(t, b, name).Fetch(nil)
		require.NoError(t, err, name)
		assert.Empty(t, got, "table %s should be empty after reset", name)
	}

	id := mustInsertProject(t, b, &types.Project{Title: "Fresh"})
	assert.Equal(t, int64(1), id, "ids restart after reset")
}
