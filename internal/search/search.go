// Package search implements the cross-entity search: a literal,
// case-insensitive substring match over every stringified column of every
// project, note, resource and idea, merged into one list ordered by recency.
package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mesh-intelligence/karte/pkg/types"
)

// NullPlaceholder is the text a NULL column contributes to a row's haystack.
const NullPlaceholder = "NULL"

// Row is one candidate record loaded by a Source: the typed hit and the
// stringified values of the entity's own projected columns.
type Row struct {
	Hit types.SearchHit

	// Fields holds one value per projected column, in projection order.
	// NULL columns are represented by nil.
	Fields []*string
}

// Source loads every candidate row of one kind.
type Source interface {
	SearchRows(kind types.Kind) ([]Row, error)
}

// Run searches src for query. An empty or whitespace-only query returns no
// hits without touching src. A failure loading any kind fails the search.
func Run(src Source, query string) ([]types.SearchHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	needle := strings.ToLower(query)

	var hits []types.SearchHit
	for _, kind := range types.SearchKinds {
		rows, err := src.SearchRows(kind)
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", kind, err)
		}
		for _, row := range rows {
			if !strings.Contains(Haystack(row.Fields), needle) {
				continue
			}
			hit := row.Hit
			hit.Kind = kind
			hits = append(hits, hit)
		}
	}

	SortHits(hits)
	return hits, nil
}

// Haystack joins the fields with single spaces and lower-cases the result.
// NULL fields contribute NullPlaceholder.
func Haystack(fields []*string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		if f == nil {
			parts[i] = NullPlaceholder
			continue
		}
		parts[i] = *f
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// SortHits orders hits by UpdatedAt descending. Hits without an UpdatedAt
// go last. Equal UpdatedAt falls back to SearchKinds order, then within a
// kind to the later note date. The sort is stable, so remaining ties keep
// their order.
func SortHits(hits []types.SearchHit) {
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		aOK, bOK := !a.UpdatedAt.IsZero(), !b.UpdatedAt.IsZero()
		switch {
		case aOK && !bOK:
			return true
		case !aOK && bOK:
			return false
		case aOK && bOK && !a.UpdatedAt.Equal(b.UpdatedAt):
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		if ra, rb := kindRank(a.Kind), kindRank(b.Kind); ra != rb {
			return ra < rb
		}
		if !a.NoteDate.IsZero() && !b.NoteDate.IsZero() {
			return a.NoteDate.After(b.NoteDate)
		}
		return false
	})
}

// kindRank is the position of k in SearchKinds; unknown kinds sort last.
func kindRank(k types.Kind) int {
	for i, sk := range types.SearchKinds {
		if sk == k {
			return i
		}
	}
	return len(types.SearchKinds)
}
