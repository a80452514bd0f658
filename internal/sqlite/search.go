package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/karte/internal/search"
	"github.com/mesh-intelligence/karte/pkg/types"
)

// rowSource loads search candidates straight from the database. The caller
// must hold the backend read lock.
type rowSource struct {
	db *sql.DB
}

// SearchRows loads every row of kind in table order. Each row's haystack
// fields are the entity's own columns; the joined project title is carried
// on the hit but not searched.
func (s rowSource) SearchRows(kind types.Kind) ([]search.Row, error) {
	switch kind {
	case types.KindProject:
		return loadSearchRows(s.db, "SELECT "+projectColumns+" FROM projects ORDER BY id",
			numProjectColumns, numProjectColumns, projectHit)
	case types.KindNote:
		return loadSearchRows(s.db, "SELECT "+noteColumns+noteFrom+" ORDER BY n.id",
			numNoteColumns, numNoteOwnColumns, noteHit)
	case types.KindResource:
		return loadSearchRows(s.db, "SELECT "+resourceColumns+resourceFrom+" ORDER BY r.id",
			numResourceColumns, numResourceOwnColumns, resourceHit)
	case types.KindIdea:
		return loadSearchRows(s.db, "SELECT "+ideaColumns+ideaFrom+" ORDER BY i.id",
			numIdeaColumns, numIdeaOwnColumns, ideaHit)
	default:
		return nil, fmt.Errorf("unknown search kind %q", kind)
	}
}

func loadSearchRows(db *sql.DB, query string, n, own int, hit func(fields) (types.SearchHit, error)) ([]search.Row, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []search.Row
	for rows.Next() {
		f, err := scanFields(rows, n)
		if err != nil {
			return nil, err
		}
		h, err := hit(f)
		if err != nil {
			return nil, err
		}
		out = append(out, search.Row{Hit: h, Fields: f.ptrs(own)})
	}
	return out, rows.Err()
}

func projectHit(f fields) (types.SearchHit, error) {
	p, err := decodeProject(f)
	if err != nil {
		return types.SearchHit{}, err
	}
	return types.SearchHit{
		Kind:         types.KindProject,
		ProjectTitle: f.ptr(1),
		UpdatedAt:    p.UpdatedAt,
		Project:      p,
	}, nil
}

func noteHit(f fields) (types.SearchHit, error) {
	n, err := decodeNote(f)
	if err != nil {
		return types.SearchHit{}, err
	}
	return types.SearchHit{
		Kind:         types.KindNote,
		ProjectTitle: f.ptr(numNoteOwnColumns),
		UpdatedAt:    n.UpdatedAt,
		NoteDate:     n.NoteDate,
		Note:         n,
	}, nil
}

func resourceHit(f fields) (types.SearchHit, error) {
	r, err := decodeResource(f)
	if err != nil {
		return types.SearchHit{}, err
	}
	return types.SearchHit{
		Kind:         types.KindResource,
		ProjectTitle: f.ptr(numResourceOwnColumns),
		UpdatedAt:    r.UpdatedAt,
		Resource:     r,
	}, nil
}

func ideaHit(f fields) (types.SearchHit, error) {
	i, err := decodeIdea(f)
	if err != nil {
		return types.SearchHit{}, err
	}
	return types.SearchHit{
		Kind:         types.KindIdea,
		ProjectTitle: f.ptr(numIdeaOwnColumns),
		UpdatedAt:    i.UpdatedAt,
		Idea:         i,
	}, nil
}
