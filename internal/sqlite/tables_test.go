// Tests for per-table insert, update, get and fetch.
package sqlite

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/karte/pkg/types"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProjects_InsertAppliesDefaults(t *testing.T) {
	b, _ := setupBackend(t)
	tbl := mustTable(t, b, types.TableProjects)

	p := &types.Project{Title: "Acme Portal", Client: "Acme"}
	id, err := tbl.Insert(p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, id, p.ID)

	got, err := tbl.Get(id)
	require.NoError(t, err)
	proj := got.(*types.Project)
	assert.Equal(t, "Acme Portal", proj.Title)
	assert.Equal(t, "Acme", proj.Client)
	assert.Equal(t, types.DefaultStatus, proj.Status)
	assert.Equal(t, types.DefaultPriority, proj.Priority)
	assert.False(t, proj.Archived)
	assert.Nil(t, proj.StartDate)
	assert.Equal(t, time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC), proj.CreatedAt)
	assert.Equal(t, proj.CreatedAt, proj.UpdatedAt)
}

func TestProjects_IDsAreMonotonic(t *testing.T) {
	b, _ := setupBackend(t)

	var last int64
	for _, title := range []string{"one", "two", "three"} {
		id := mustInsertProject(t, b, &types.Project{Title: title})
		assert.Greater(t, id, last)
		last = id
	}
}

func TestProjects_EmptyFieldsStoredAsNull(t *testing.T) {
	b, _ := setupBackend(t)
	id := mustInsertProject(t, b, &types.Project{Title: "Bare"})

	var client, owner, start any
	require.NoError(t, b.db.QueryRow(
		"SELECT client, owner, start_date FROM projects WHERE id = ?", id).Scan(&client, &owner, &start))
	assert.Nil(t, client)
	assert.Nil(t, owner)
	assert.Nil(t, start)
}

func TestProjects_RejectsInvalidData(t *testing.T) {
	b, _ := setupBackend(t)
	tbl := mustTable(t, b, types.TableProjects)

	tests := []struct {
		name string
		data any
		want error
	}{
		{"empty title", &types.Project{Title: "  "}, types.ErrInvalidTitle},
		{"wrong type", &types.Note{Content: "x"}, types.ErrInvalidData},
		{"value not pointer", types.Project{Title: "x"}, types.ErrInvalidData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tbl.Insert(tt.data)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestProjects_UpdateOverwritesAndRefreshesUpdatedAt(t *testing.T) {
	b, _ := setupBackend(t)
	tbl := mustTable(t, b, types.TableProjects)

	start := day(2026, 5, 1)
	p := &types.Project{Title: "Widget", Owner: "sato", StartDate: &start}
	id, err := tbl.Insert(p)
	require.NoError(t, err)
	created := p.CreatedAt

	due := day(2026, 7, 1)
	err = tbl.Update(id, &types.Project{
		Title:    "Widget v2",
		Status:   types.StatusMonitoring,
		Priority: types.PriorityUrgent,
		DueDate:  &due,
		Archived: true,
	})
	require.NoError(t, err)

	got, err := tbl.Get(id)
	require.NoError(t, err)
	proj := got.(*types.Project)
	assert.Equal(t, "Widget v2", proj.Title)
	assert.Equal(t, types.StatusMonitoring, proj.Status)
	assert.Equal(t, types.PriorityUrgent, proj.Priority)
	assert.Empty(t, proj.Owner, "full overwrite clears omitted fields")
	assert.Nil(t, proj.StartDate)
	require.NotNil(t, proj.DueDate)
	assert.Equal(t, due, *proj.DueDate)
	assert.True(t, proj.Archived)
	assert.Equal(t, created, proj.CreatedAt)
	assert.True(t, proj.UpdatedAt.After(created))
}

func TestTables_UpdateMissingIDIsSilent(t *testing.T) {
	b, _ := setupBackend(t)
	pid := mustInsertProject(t, b, &types.Project{Title: "Owner"})

	tests := []struct {
		table string
		data  any
	}{
		{types.TableProjects, &types.Project{Title: "ghost"}},
		{types.TableNotes, &types.Note{ProjectID: pid, NoteDate: day(2026, 6, 1), Content: "ghost"}},
		{types.TableResources, &types.Resource{Title: "ghost"}},
		{types.TableIdeas, &types.Idea{Title: "ghost"}},
	}
	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			tbl := mustTable(t, b, tt.table)
			require.NoError(t, tbl.Update(999, tt.data))

			_, err := tbl.Get(999)
			assert.ErrorIs(t, err, types.ErrNotFound)
		})
	}

	projects, err := mustTable(t, b, types.TableProjects).Fetch(nil)
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestTables_GetErrors(t *testing.T) {
	b, _ := setupBackend(t)

	for _, name := range types.StandardTableNames {
		t.Run(name, func(t *testing.T) {
			tbl := mustTable(t, b, name)

			_, err := tbl.Get(0)
			assert.ErrorIs(t, err, types.ErrInvalidID)

			_, err = tbl.Get(42)
			assert.ErrorIs(t, err, types.ErrNotFound)

			assert.ErrorIs(t, tbl.Update(-1, nil), types.ErrInvalidID)
		})
	}
}

func TestProjects_FetchFilters(t *testing.T) {
	b, _ := setupBackend(t)
	tbl := mustTable(t, b, types.TableProjects)

	mustInsertProject(t, b, &types.Project{Title: "A", Owner: "sato", Status: types.StatusIntake})
	mustInsertProject(t, b, &types.Project{Title: "B", Owner: "kato", Priority: types.PriorityHigh})
	mustInsertProject(t, b, &types.Project{Title: "C", Owner: "sato", Archived: true, Client: "Acme"})

	tests := []struct {
		name   string
		filter map[string]any
		want   []string
	}{
		{"all newest first", nil, []string{"C", "B", "A"}},
		{"owner", map[string]any{"owner": "sato"}, []string{"C", "A"}},
		{"status", map[string]any{"status": types.StatusIntake}, []string{"A"}},
		{"priority", map[string]any{"priority": types.PriorityHigh}, []string{"B"}},
		{"client", map[string]any{"client": "Acme"}, []string{"C"}},
		{"not archived", map[string]any{"archived": false}, []string{"B", "A"}},
		{"empty string ignored", map[string]any{"owner": ""}, []string{"C", "B", "A"}},
		{"limit", map[string]any{"limit": 2}, []string{"C", "B"}},
		{"offset without limit", map[string]any{"offset": 1}, []string{"B", "A"}},
		{"limit and offset", map[string]any{"limit": 1, "offset": 1}, []string{"B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tbl.Fetch(tt.filter)
			require.NoError(t, err)
			titles := make([]string, len(got))
			for i, v := range got {
				titles[i] = v.(*types.Project).Title
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestTables_FetchRejectsWrongFilterTypes(t *testing.T) {
	b, _ := setupBackend(t)

	tests := []struct {
		table  string
		filter map[string]any
	}{
		{types.TableProjects, map[string]any{"status": 3}},
		{types.TableProjects, map[string]any{"archived": "yes"}},
		{types.TableProjects, map[string]any{"limit": "ten"}},
		{types.TableNotes, map[string]any{"project_id": "1"}},
		{types.TableResources, map[string]any{"unattached": 1}},
		{types.TableIdeas, map[string]any{"pinned": "true"}},
	}
	for _, tt := range tests {
		_, err := mustTable(t, b, tt.table).Fetch(tt.filter)
		assert.ErrorIs(t, err, types.ErrInvalidFilter, "%s %v", tt.table, tt.filter)
	}
}

func TestNotes_InsertCarriesProjectTitle(t *testing.T) {
	b, _ := setupBackend(t)
	pid := mustInsertProject(t, b, &types.Project{Title: "Acme Portal"})
	tbl := mustTable(t, b, types.TableNotes)

	id, err := tbl.Insert(&types.Note{
		ProjectID:  pid,
		NoteDate:   day(2026, 6, 1),
		Author:     "sato",
		Content:    "kickoff",
		NextAction: "send estimate",
		Progress:   10,
	})
	require.NoError(t, err)

	got, err := tbl.Get(id)
	require.NoError(t, err)
	n := got.(*types.Note)
	assert.Equal(t, pid, n.ProjectID)
	assert.Equal(t, "Acme Portal", n.ProjectTitle)
	assert.Equal(t, day(2026, 6, 1), n.NoteDate)
	assert.Equal(t, "kickoff", n.Content)
	assert.Equal(t, "send estimate", n.NextAction)
	assert.Equal(t, 10, n.Progress)
}

func TestNotes_RejectsInvalidData(t *testing.T) {
	b, _ := setupBackend(t)
	pid := mustInsertProject(t, b, &types.Project{Title: "P"})
	tbl := mustTable(t, b, types.TableNotes)

	tests := []struct {
		name string
		note *types.Note
		want error
	}{
		{"no project", &types.Note{NoteDate: day(2026, 6, 1), Content: "x"}, types.ErrInvalidProject},
		{"no date", &types.Note{ProjectID: pid, Content: "x"}, types.ErrInvalidNoteDate},
		{"empty content", &types.Note{ProjectID: pid, NoteDate: day(2026, 6, 1), Content: " "}, types.ErrInvalidContent},
		{"progress over", &types.Note{ProjectID: pid, NoteDate: day(2026, 6, 1), Content: "x", Progress: 101}, types.ErrInvalidProgress},
		{"progress under", &types.Note{ProjectID: pid, NoteDate: day(2026, 6, 1), Content: "x", Progress: -1}, types.ErrInvalidProgress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tbl.Insert(tt.note)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNotes_MissingProjectFailsForeignKey(t *testing.T) {
	b, _ := setupBackend(t)

	_, err := mustTable(t, b, types.TableNotes).Insert(&types.Note{
		ProjectID: 77, NoteDate: day(2026, 6, 1), Content: "orphan",
	})
	require.Error(t, err)
	assert.False(t, errors.Is(err, types.ErrInvalidProject))
}

func TestNotes_FetchByProjectNewestFirst(t *testing.T) {
	b, _ := setupBackend(t)
	p1 := mustInsertProject(t, b, &types.Project{Title: "One"})
	p2 := mustInsertProject(t, b, &types.Project{Title: "Two"})
	tbl := mustTable(t, b, types.TableNotes)

	for _, n := range []*types.Note{
		{ProjectID: p1, NoteDate: day(2026, 6, 1), Content: "first"},
		{ProjectID: p2, NoteDate: day(2026, 6, 2), Content: "other"},
		{ProjectID: p1, NoteDate: day(2026, 6, 3), Content: "second"},
	} {
		_, err := tbl.Insert(n)
		require.NoError(t, err)
	}

	got, err := tbl.Fetch(map[string]any{"project_id": p1})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].(*types.Note).Content)
	assert.Equal(t, "first", got[1].(*types.Note).Content)
	assert.Equal(t, "One", got[0].(*types.Note).ProjectTitle)
}

func TestResources_RoundTripAndFilters(t *testing.T) {
	b, _ := setupBackend(t)
	pid := mustInsertProject(t, b, &types.Project{Title: "Acme"})
	tbl := mustTable(t, b, types.TableResources)

	attached := &types.Resource{
		ProjectID: &pid,
		Title:     "Spec sheet",
		Kind:      types.ResourceKindDrive,
		URL:       "https://drive.example.com/spec",
		LocalPath: "uploads/a.pdf;uploads/b.pdf",
		Tags:      "spec,pdf",
	}
	_, err := tbl.Insert(attached)
	require.NoError(t, err)
	loose := &types.Resource{Title: "Loose link", URL: "https://example.com"}
	looseID, err := tbl.Insert(loose)
	require.NoError(t, err)

	got, err := tbl.Get(looseID)
	require.NoError(t, err)
	r := got.(*types.Resource)
	assert.Nil(t, r.ProjectID)
	assert.Empty(t, r.ProjectTitle)
	assert.Equal(t, types.ResourceKindOther, r.Kind)

	all, err := tbl.Fetch(nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	first := all[1].(*types.Resource)
	assert.Equal(t, "Acme", first.ProjectTitle)
	assert.Equal(t, []string{"uploads/a.pdf", "uploads/b.pdf"}, first.LocalPaths())

	unattached, err := tbl.Fetch(map[string]any{"unattached": true})
	require.NoError(t, err)
	require.Len(t, unattached, 1)
	assert.Equal(t, "Loose link", unattached[0].(*types.Resource).Title)

	drive, err := tbl.Fetch(map[string]any{"kind": types.ResourceKindDrive})
	require.NoError(t, err)
	assert.Len(t, drive, 1)

	byProject, err := tbl.Fetch(map[string]any{"project_id": pid})
	require.NoError(t, err)
	assert.Len(t, byProject, 1)
}

func TestIdeas_PinnedListedFirst(t *testing.T) {
	b, _ := setupBackend(t)
	tbl := mustTable(t, b, types.TableIdeas)

	_, err := tbl.Insert(&types.Idea{Title: "pinned early", Pinned: true})
	require.NoError(t, err)
	_, err = tbl.Insert(&types.Idea{Title: "recent", ImagePath: "uploads/idea_x.png"})
	require.NoError(t, err)

	got, err := tbl.Fetch(nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "pinned early", got[0].(*types.Idea).Title)
	assert.Equal(t, "recent", got[1].(*types.Idea).Title)

	pinned, err := tbl.Fetch(map[string]any{"pinned": true})
	require.NoError(t, err)
	assert.Len(t, pinned, 1)
}

func TestIdeas_UpdateDetachesProject(t *testing.T) {
	b, _ := setupBackend(t)
	pid := mustInsertProject(t, b, &types.Project{Title: "Acme"})
	tbl := mustTable(t, b, types.TableIdeas)

	id, err := tbl.Insert(&types.Idea{ProjectID: &pid, Title: "logo"})
	require.NoError(t, err)
	require.NoError(t, tbl.Update(id, &types.Idea{Title: "logo", Pinned: true}))

	got, err := tbl.Get(id)
	require.NoError(t, err)
	i := got.(*types.Idea)
	assert.Nil(t, i.ProjectID)
	assert.True(t, i.Pinned)
}
