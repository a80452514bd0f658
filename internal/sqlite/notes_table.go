package sqlite

import (
	"fmt"

	"github.com/mesh-intelligence/karte/pkg/types"
)

// noteColumns projects a note's own columns followed by the owning project
// title.
const noteColumns = `n.id, n.project_id, n.note_date, n.author, n.content, n.next_action,
	n.progress, n.created_at, n.updated_at, p.title`

const (
	numNoteOwnColumns = 9
	numNoteColumns    = numNoteOwnColumns + 1
)

const noteFrom = " FROM notes n LEFT JOIN projects p ON p.id = n.project_id"

func decodeNote(f fields) (*types.Note, error) {
	id, err := f.int64(0)
	if err != nil {
		return nil, fmt.Errorf("decoding note id: %w", err)
	}
	projectID, err := f.int64(1)
	if err != nil {
		return nil, fmt.Errorf("decoding note project_id: %w", err)
	}
	progress, err := f.int64(6)
	if err != nil {
		return nil, fmt.Errorf("decoding note progress: %w", err)
	}
	n := &types.Note{
		ID:           id,
		ProjectID:    projectID,
		ProjectTitle: f.str(9),
		Author:       f.str(3),
		Content:      f.str(4),
		NextAction:   f.str(5),
		Progress:     int(progress),
		CreatedAt:    f.time(7),
		UpdatedAt:    f.time(8),
	}
	if d := f.date(2); d != nil {
		n.NoteDate = *d
	}
	return n, nil
}

func (t *table) getNote(id int64) (any, error) {
	n, err := queryOne(t.backend.db, numNoteColumns, decodeNote,
		"SELECT "+noteColumns+noteFrom+" WHERE n.id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("getting note %d: %w", id, err)
	}
	return n, nil
}

func (t *table) insertNote(data any) (int64, error) {
	n, ok := data.(*types.Note)
	if !ok {
		return 0, types.ErrInvalidData
	}
	if err := n.Validate(); err != nil {
		return 0, err
	}

	now := t.backend.timestamp()
	res, err := t.backend.db.Exec(`
		INSERT INTO notes (project_id, note_date, author, content, next_action, progress,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ProjectID, n.NoteDate.Format(types.DateLayout), nullString(n.Author), n.Content,
		nullString(n.NextAction), n.Progress, now, now)
	if err != nil {
		return 0, fmt.Errorf("inserting note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading note id: %w", err)
	}

	n.ID = id
	n.CreatedAt = parseStamp(now)
	n.UpdatedAt = n.CreatedAt
	return id, nil
}

func (t *table) updateNote(id int64, data any) error {
	n, ok := data.(*types.Note)
	if !ok {
		return types.ErrInvalidData
	}
	if err := n.Validate(); err != nil {
		return err
	}

	now := t.backend.timestamp()
	_, err := t.backend.db.Exec(`
		UPDATE notes SET project_id = ?, note_date = ?, author = ?, content = ?,
			next_action = ?, progress = ?, updated_at = ?
		WHERE id = ?`,
		n.ProjectID, n.NoteDate.Format(types.DateLayout), nullString(n.Author), n.Content,
		nullString(n.NextAction), n.Progress, now, id)
	if err != nil {
		return fmt.Errorf("updating note: %w", err)
	}

	n.ID = id
	n.UpdatedAt = parseStamp(now)
	return nil
}

func (t *table) fetchNotes(filter map[string]any) ([]any, error) {
	var w where
	if err := w.idFilter(filter, "project_id", "n.project_id"); err != nil {
		return nil, err
	}

	query, err := w.build("SELECT "+noteColumns+noteFrom,
		"n.updated_at DESC, n.note_date DESC, n.id DESC", filter)
	if err != nil {
		return nil, err
	}
	results, err := queryAll(t.backend.db, numNoteColumns, decodeNote, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("fetching notes: %w", err)
	}
	return results, nil
}
