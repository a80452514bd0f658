package sqlite

import (
	"fmt"

	"github.com/mesh-intelligence/karte/pkg/types"
)

// resourceColumns projects a resource's own columns followed by the owning
// project title.
const resourceColumns = `r.id, r.project_id, r.title, r.kind, r.url, r.local_path, r.tags,
	r.note, r.created_at, r.updated_at, p.title`

const (
	numResourceOwnColumns = 10
	numResourceColumns    = numResourceOwnColumns + 1
)

const resourceFrom = " FROM resources r LEFT JOIN projects p ON p.id = r.project_id"

func decodeResource(f fields) (*types.Resource, error) {
	id, err := f.int64(0)
	if err != nil {
		return nil, fmt.Errorf("decoding resource id: %w", err)
	}
	projectID, err := f.optInt64(1)
	if err != nil {
		return nil, fmt.Errorf("decoding resource project_id: %w", err)
	}
	return &types.Resource{
		ID:           id,
		ProjectID:    projectID,
		ProjectTitle: f.str(10),
		Title:        f.str(2),
		Kind:         f.str(3),
		URL:          f.str(4),
		LocalPath:    f.str(5),
		Tags:         f.str(6),
		Note:         f.str(7),
		CreatedAt:    f.time(8),
		UpdatedAt:    f.time(9),
	}, nil
}

func (t *table) getResource(id int64) (any, error) {
	r, err := queryOne(t.backend.db, numResourceColumns, decodeResource,
		"SELECT "+resourceColumns+resourceFrom+" WHERE r.id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("getting resource %d: %w", id, err)
	}
	return r, nil
}

func (t *table) insertResource(data any) (int64, error) {
	r, ok := data.(*types.Resource)
	if !ok {
		return 0, types.ErrInvalidData
	}
	r.ApplyDefaults()

	now := t.backend.timestamp()
	res, err := t.backend.db.Exec(`
		INSERT INTO resources (project_id, title, kind, url, local_path, tags, note,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullInt64(r.ProjectID), nullString(r.Title), r.Kind, nullString(r.URL),
		nullString(r.LocalPath), nullString(r.Tags), nullString(r.Note), now, now)
	if err != nil {
		return 0, fmt.Errorf("inserting resource: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading resource id: %w", err)
	}

	r.ID = id
	r.CreatedAt = parseStamp(now)
	r.UpdatedAt = r.CreatedAt
	return id, nil
}

func (t *table) updateResource(id int64, data any) error {
	r, ok := data.(*types.Resource)
	if !ok {
		return types.ErrInvalidData
	}
	r.ApplyDefaults()

	now := t.backend.timestamp()
	_, err := t.backend.db.Exec(`
		UPDATE resources SET project_id = ?, title = ?, kind = ?, url = ?, local_path = ?,
			tags = ?, note = ?, updated_at = ?
		WHERE id = ?`,
		nullInt64(r.ProjectID), nullString(r.Title), r.Kind, nullString(r.URL),
		nullString(r.LocalPath), nullString(r.Tags), nullString(r.Note), now, id)
	if err != nil {
		return fmt.Errorf("updating resource: %w", err)
	}

	r.ID = id
	r.UpdatedAt = parseStamp(now)
	return nil
}

func (t *table) fetchResources(filter map[string]any) ([]any, error) {
	var w where
	if err := w.idFilter(filter, "project_id", "r.project_id"); err != nil {
		return nil, err
	}
	if err := w.stringFilter(filter, "kind", "r.kind"); err != nil {
		return nil, err
	}
	if v, ok := filter["unattached"]; ok {
		unattached, ok := v.(bool)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		if unattached {
			w.add("r.project_id IS NULL")
		}
	}

	query, err := w.build("SELECT "+resourceColumns+resourceFrom, "r.updated_at DESC, r.id DESC", filter)
	if err != nil {
		return nil, err
	}
	results, err := queryAll(t.backend.db, numResourceColumns, decodeResource, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("fetching resources: %w", err)
	}
	return results, nil
}
