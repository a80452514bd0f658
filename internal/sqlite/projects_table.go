package sqlite

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/karte/pkg/types"
)

// projectColumns is the projection every project read uses, in scan order.
const projectColumns = "id, title, client, status, priority, owner, start_date, due_date, description, archived, created_at, updated_at"

const numProjectColumns = 12

func decodeProject(f fields) (*types.Project, error) {
	id, err := f.int64(0)
	if err != nil {
		return nil, fmt.Errorf("decoding project id: %w", err)
	}
	return &types.Project{
		ID:          id,
		Title:       f.str(1),
		Client:      f.str(2),
		Status:      f.str(3),
		Priority:    f.str(4),
		Owner:       f.str(5),
		StartDate:   f.date(6),
		DueDate:     f.date(7),
		Description: f.str(8),
		Archived:    f.bool(9),
		CreatedAt:   f.time(10),
		UpdatedAt:   f.time(11),
	}, nil
}

func (t *table) getProject(id int64) (any, error) {
	p, err := queryOne(t.backend.db, numProjectColumns, decodeProject,
		"SELECT "+projectColumns+" FROM projects WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("getting project %d: %w", id, err)
	}
	return p, nil
}

func (t *table) insertProject(data any) (int64, error) {
	p, ok := data.(*types.Project)
	if !ok {
		return 0, types.ErrInvalidData
	}
	if err := p.Validate(); err != nil {
		return 0, err
	}
	p.ApplyDefaults()

	now := t.backend.timestamp()
	res, err := t.backend.db.Exec(`
		INSERT INTO projects (title, client, status, priority, owner, start_date, due_date,
			description, archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Title, nullString(p.Client), p.Status, p.Priority, nullString(p.Owner),
		nullDate(p.StartDate), nullDate(p.DueDate), nullString(p.Description),
		boolInt(p.Archived), now, now)
	if err != nil {
		return 0, fmt.Errorf("inserting project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading project id: %w", err)
	}

	p.ID = id
	p.CreatedAt = parseStamp(now)
	p.UpdatedAt = p.CreatedAt
	return id, nil
}

func (t *table) updateProject(id int64, data any) error {
	p, ok := data.(*types.Project)
	if !ok {
		return types.ErrInvalidData
	}
	if err := p.Validate(); err != nil {
		return err
	}
	p.ApplyDefaults()

	now := t.backend.timestamp()
	_, err := t.backend.db.Exec(`
		UPDATE projects SET title = ?, client = ?, status = ?, priority = ?, owner = ?,
			start_date = ?, due_date = ?, description = ?, archived = ?, updated_at = ?
		WHERE id = ?`,
		p.Title, nullString(p.Client), p.Status, p.Priority, nullString(p.Owner),
		nullDate(p.StartDate), nullDate(p.DueDate), nullString(p.Description),
		boolInt(p.Archived), now, id)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}

	p.ID = id
	p.UpdatedAt = parseStamp(now)
	return nil
}

func (t *table) fetchProjects(filter map[string]any) ([]any, error) {
	var w where
	for _, key := range []string{"status", "priority", "owner", "client"} {
		if err := w.stringFilter(filter, key, key); err != nil {
			return nil, err
		}
	}
	if err := w.boolFilter(filter, "archived", "archived"); err != nil {
		return nil, err
	}

	query, err := w.build("SELECT "+projectColumns+" FROM projects", "updated_at DESC, id DESC", filter)
	if err != nil {
		return nil, err
	}
	results, err := queryAll(t.backend.db, numProjectColumns, decodeProject, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("fetching projects: %w", err)
	}
	return results, nil
}

// parseStamp parses a timestamp produced by Backend.timestamp.
func parseStamp(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
