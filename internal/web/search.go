package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mesh-intelligence/karte/pkg/types"
)

type searchData struct {
	Query string
	Hits  []types.SearchHit
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	hits, err := s.store.Search(query)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, "search", "検索", searchData{Query: query, Hits: hits})
}

// searchResult is the JSON shape of one hit.
type searchResult struct {
	Kind         types.Kind `json:"kind"`
	ID           int64      `json:"id"`
	ProjectID    *int64     `json:"project_id,omitempty"`
	ProjectTitle *string    `json:"project_title"`
	Summary      string     `json:"summary"`
	URL          string     `json:"url"`
	UpdatedAt    *time.Time `json:"updated_at"`
	NoteDate     string     `json:"note_date,omitempty"`
}

func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	hits, err := s.store.Search(r.URL.Query().Get("q"))
	if err != nil {
		s.log.Error().Err(err).Str("request_id", requestID(r)).Msg("search failed")
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	results := make([]searchResult, 0, len(hits))
	for _, h := range hits {
		res := searchResult{
			Kind:         h.Kind,
			ID:           h.ID(),
			ProjectTitle: h.ProjectTitle,
			Summary:      h.Summary(),
			URL:          hitURL(h),
		}
		if pid, ok := h.ProjectID(); ok {
			res.ProjectID = &pid
		}
		if !h.UpdatedAt.IsZero() {
			t := h.UpdatedAt
			res.UpdatedAt = &t
		}
		if !h.NoteDate.IsZero() {
			res.NoteDate = h.NoteDate.Format(types.DateLayout)
		}
		results = append(results, res)
	}
	respondJSON(w, http.StatusOK, results)
}

// hitURL links a hit to the page that shows it.
func hitURL(h types.SearchHit) string {
	switch h.Kind {
	case types.KindProject:
		return fmt.Sprintf("/projects/%d", h.ID())
	case types.KindNote:
		pid, _ := h.ProjectID()
		return fmt.Sprintf("/projects/%d#note-%d", pid, h.ID())
	case types.KindResource:
		return fmt.Sprintf("/resources#resource-%d", h.ID())
	case types.KindIdea:
		return fmt.Sprintf("/ideas#idea-%d", h.ID())
	}
	return "/"
}
