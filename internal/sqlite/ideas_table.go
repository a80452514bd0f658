package sqlite

import (
	"fmt"

	"github.com/mesh-intelligence/karte/pkg/types"
)

// ideaColumns projects an idea's own columns followed by the owning project
// title.
const ideaColumns = `i.id, i.project_id, i.title, i.url, i.image_path, i.note, i.tags,
	i.pinned, i.created_at, i.updated_at, p.title`

const (
	numIdeaOwnColumns = 10
	numIdeaColumns    = numIdeaOwnColumns + 1
)

const ideaFrom = " FROM ideas i LEFT JOIN projects p ON p.id = i.project_id"

func decodeIdea(f fields) (*types.Idea, error) {
	id, err := f.int64(0)
	if err != nil {
		return nil, fmt.Errorf("decoding idea id: %w", err)
	}
	projectID, err := f.optInt64(1)
	if err != nil {
		return nil, fmt.Errorf("decoding idea project_id: %w", err)
	}
	return &types.Idea{
		ID:           id,
		ProjectID:    projectID,
		ProjectTitle: f.str(10),
		Title:        f.str(2),
		URL:          f.str(3),
		ImagePath:    f.str(4),
		Note:         f.str(5),
		Tags:         f.str(6),
		Pinned:       f.bool(7),
		CreatedAt:    f.time(8),
		UpdatedAt:    f.time(9),
	}, nil
}

func (t *table) getIdea(id int64) (any, error) {
	i, err := queryOne(t.backend.db, numIdeaColumns, decodeIdea,
		"SELECT "+ideaColumns+ideaFrom+" WHERE i.id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("getting idea %d: %w", id, err)
	}
	return i, nil
}

func (t *table) insertIdea(data any) (int64, error) {
	i, ok := data.(*types.Idea)
	if !ok {
		return 0, types.ErrInvalidData
	}

	now := t.backend.timestamp()
	res, err := t.backend.db.Exec(`
		INSERT INTO ideas (project_id, title, url, image_path, note, tags, pinned,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullInt64(i.ProjectID), nullString(i.Title), nullString(i.URL), nullString(i.ImagePath),
		nullString(i.Note), nullString(i.Tags), boolInt(i.Pinned), now, now)
	if err != nil {
		return 0, fmt.Errorf("inserting idea: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading idea id: %w", err)
	}

	i.ID = id
	i.CreatedAt = parseStamp(now)
	i.UpdatedAt = i.CreatedAt
	return id, nil
}

func (t *table) updateIdea(id int64, data any) error {
	i, ok := data.(*types.Idea)
	if !ok {
		return types.ErrInvalidData
	}

	now := t.backend.timestamp()
	_, err := t.backend.db.Exec(`
		UPDATE ideas SET project_id = ?, title = ?, url = ?, image_path = ?, note = ?,
			tags = ?, pinned = ?, updated_at = ?
		WHERE id = ?`,
		nullInt64(i.ProjectID), nullString(i.Title), nullString(i.URL), nullString(i.ImagePath),
		nullString(i.Note), nullString(i.Tags), boolInt(i.Pinned), now, id)
	if err != nil {
		return fmt.Errorf("updating idea: %w", err)
	}

	i.ID = id
	i.UpdatedAt = parseStamp(now)
	return nil
}

func (t *table) fetchIdeas(filter map[string]any) ([]any, error) {
	var w where
	if err := w.idFilter(filter, "project_id", "i.project_id"); err != nil {
		return nil, err
	}
	if err := w.boolFilter(filter, "pinned", "i.pinned"); err != nil {
		return nil, err
	}

	query, err := w.build("SELECT "+ideaColumns+ideaFrom, "i.pinned DESC, i.updated_at DESC, i.id DESC", filter)
	if err != nil {
		return nil, err
	}
	results, err := queryAll(t.backend.db, numIdeaColumns, decodeIdea, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("fetching ideas: %w", err)
	}
	return results, nil
}
