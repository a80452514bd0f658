// Integration tests for the record store through its public package.
package integration

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/karte/pkg/sqlite"
	"github.com/mesh-intelligence/karte/pkg/types"
)

// openStore attaches a store to an isolated temp directory.
func openStore(t *testing.T, dir string) types.Store {
	t.Helper()
	store, err := sqlite.Open(types.Config{Backend: types.BackendSQLite, DataDir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { store.Detach() })
	return store
}

// mustGetTable retrieves a table by name or fails the test.
func mustGetTable(t *testing.T, store types.Store, name string) types.Table {
	t.Helper()
	tbl, err := store.GetTable(name)
	require.NoError(t, err, "GetTable(%q)", name)
	return tbl
}

func TestStorePersistsAcrossReattach(t *testing.T) {
	dir := t.TempDir()

	store := openStore(t, dir)
	projects := mustGetTable(t, store, types.TableProjects)
	id, err := projects.Insert(&types.Project{Title: "Acme Portal"})
	require.NoError(t, err)
	notes := mustGetTable(t, store, types.TableNotes)
	_, err = notes.Insert(&types.Note{ProjectID: id, NoteDate: mustDate(t, "2026-06-01"), Content: "Kickoff"})
	require.NoError(t, err)
	require.NoError(t, store.Detach())

	_, err = projects.Get(id)
	assert.ErrorIs(t, err, types.ErrStoreDetached)

	reopened := openStore(t, dir)
	got, err := mustGetTable(t, reopened, types.TableProjects).Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Acme Portal", got.(*types.Project).Title)

	hits, err := reopened.Search("kickoff")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.NotNil(t, hits[0].ProjectTitle)
	assert.Equal(t, "Acme Portal", *hits[0].ProjectTitle)
}

func TestStoreConcurrentInserts(t *testing.T) {
	store := openStore(t, t.TempDir())
	ideas := mustGetTable(t, store, types.TableIdeas)

	const n = 20
	ids := make([]int64, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := ideas.Insert(&types.Idea{Title: fmt.Sprintf("idea %d", i)})
			assert.NoError(t, err)
			ids[i] = id
		}()
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	rows, err := ideas.Fetch(nil)
	require.NoError(t, err)
	assert.Len(t, rows, n)
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := types.ParseDate(s)
	require.NoError(t, err)
	return *d
}
