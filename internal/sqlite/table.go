package sqlite

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/karte/pkg/types"
)

// table implements types.Table for a single entity type.
// Each table knows its name and the backend it belongs to.
type table struct {
	name    string
	backend *Backend
}

func newTable(b *Backend, name string) *table {
	return &table{name: name, backend: b}
}

// Get retrieves an entity by ID.
// Returns ErrInvalidID if id is not positive, ErrNotFound if not found.
func (t *table) Get(id int64) (any, error) {
	if id <= 0 {
		return nil, types.ErrInvalidID
	}
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	switch t.name {
	case types.TableProjects:
		return t.getProject(id)
	case types.TableNotes:
		return t.getNote(id)
	case types.TableResources:
		return t.getResource(id)
	case types.TableIdeas:
		return t.getIdea(id)
	default:
		return nil, types.ErrTableNotFound
	}
}

// Insert appends a new entity and returns its ID. CreatedAt and UpdatedAt
// are stamped with the current time and written back to data.
func (t *table) Insert(data any) (int64, error) {
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if !t.backend.attached {
		return 0, types.ErrStoreDetached
	}

	switch t.name {
	case types.TableProjects:
		return t.insertProject(data)
	case types.TableNotes:
		return t.insertNote(data)
	case types.TableResources:
		return t.insertResource(data)
	case types.TableIdeas:
		return t.insertIdea(data)
	default:
		return 0, types.ErrTableNotFound
	}
}

// Update overwrites every field of the entity with the given ID and
// refreshes UpdatedAt. A missing ID is not an error: nothing changes.
func (t *table) Update(id int64, data any) error {
	if id <= 0 {
		return types.ErrInvalidID
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if !t.backend.attached {
		return types.ErrStoreDetached
	}

	switch t.name {
	case types.TableProjects:
		return t.updateProject(id, data)
	case types.TableNotes:
		return t.updateNote(id, data)
	case types.TableResources:
		return t.updateResource(id, data)
	case types.TableIdeas:
		return t.updateIdea(id, data)
	default:
		return types.ErrTableNotFound
	}
}

// Fetch returns entities matching the filter, most recently updated first.
// Empty filter matches all.
func (t *table) Fetch(filter map[string]any) ([]any, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	switch t.name {
	case types.TableProjects:
		return t.fetchProjects(filter)
	case types.TableNotes:
		return t.fetchNotes(filter)
	case types.TableResources:
		return t.fetchResources(filter)
	case types.TableIdeas:
		return t.fetchIdeas(filter)
	default:
		return nil, types.ErrTableNotFound
	}
}

// where accumulates filter conditions and their arguments.
type where struct {
	conditions []string
	args       []any
}

func (w *where) add(cond string, args ...any) {
	w.conditions = append(w.conditions, cond)
	w.args = append(w.args, args...)
}

// stringFilter adds "column = ?" when key is present in filter.
func (w *where) stringFilter(filter map[string]any, key, column string) error {
	v, ok := filter[key]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return types.ErrInvalidFilter
	}
	if s != "" {
		w.add(column+" = ?", s)
	}
	return nil
}

// boolFilter adds "column = 0/1" when key is present in filter.
func (w *where) boolFilter(filter map[string]any, key, column string) error {
	v, ok := filter[key]
	if !ok {
		return nil
	}
	b, ok := v.(bool)
	if !ok {
		return types.ErrInvalidFilter
	}
	w.add(column+" = ?", boolInt(b))
	return nil
}

// idFilter adds "column = ?" for an integer ID when key is present.
func (w *where) idFilter(filter map[string]any, key, column string) error {
	v, ok := filter[key]
	if !ok {
		return nil
	}
	id, ok := toInt64(v)
	if !ok {
		return types.ErrInvalidFilter
	}
	w.add(column+" = ?", id)
	return nil
}

// build appends the WHERE clause, the recency order and any limit/offset
// from filter to query.
func (w *where) build(query, orderBy string, filter map[string]any) (string, error) {
	if len(w.conditions) > 0 {
		query += " WHERE " + strings.Join(w.conditions, " AND ")
	}
	query += " ORDER BY " + orderBy

	limited := false
	if limit, ok := filter["limit"]; ok {
		l, ok := toInt(limit)
		if !ok {
			return "", types.ErrInvalidFilter
		}
		if l > 0 {
			query += fmt.Sprintf(" LIMIT %d", l)
			limited = true
		}
	}
	if offset, ok := filter["offset"]; ok {
		o, ok := toInt(offset)
		if !ok {
			return "", types.ErrInvalidFilter
		}
		if o > 0 {
			// SQLite only accepts OFFSET after a LIMIT clause.
			if !limited {
				query += " LIMIT -1"
			}
			query += fmt.Sprintf(" OFFSET %d", o)
		}
	}
	return query, nil
}
