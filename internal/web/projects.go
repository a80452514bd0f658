package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mesh-intelligence/karte/pkg/types"
)

// Archived listing modes for the dashboard.
const (
	archivedHide = ""
	archivedAll  = "all"
	archivedOnly = "only"
)

type projectFilter struct {
	Status   string
	Priority string
	Owner    string
	Archived string
}

func (f projectFilter) toMap() map[string]any {
	m := map[string]any{}
	if f.Status != "" {
		m["status"] = f.Status
	}
	if f.Priority != "" {
		m["priority"] = f.Priority
	}
	if f.Owner != "" {
		m["owner"] = f.Owner
	}
	switch f.Archived {
	case archivedAll:
	case archivedOnly:
		m["archived"] = true
	default:
		m["archived"] = false
	}
	return m
}

type dashboardData struct {
	Filter     projectFilter
	Projects   []*types.Project
	Statuses   []string
	Priorities []string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := projectFilter{
		Status:   strings.TrimSpace(q.Get("status")),
		Priority: strings.TrimSpace(q.Get("priority")),
		Owner:    strings.TrimSpace(q.Get("owner")),
		Archived: q.Get("archived"),
	}

	projects, err := fetch[types.Project](s.store, types.TableProjects, filter.toMap())
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.render(w, r, "dashboard", "案件一覧", dashboardData{
		Filter:     filter,
		Projects:   projects,
		Statuses:   types.StatusOptions,
		Priorities: types.PriorityOptions,
	})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(r); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := projectFromForm(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := insert(s.store, types.TableProjects, p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info().Int64("project_id", id).Str("title", p.Title).Msg("project created")
	redirect(w, r, fmt.Sprintf("/projects/%d", id))
}

type projectData struct {
	Project    *types.Project
	Notes      []*types.Note
	Resources  []*types.Resource
	Ideas      []*types.Idea
	Statuses   []string
	Priorities []string
	Today      string
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, found, err := get[types.Project](s.store, types.TableProjects, id)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !found {
		s.notFound(w, "project")
		return
	}

	byProject := map[string]any{"project_id": id}
	notes, err := fetch[types.Note](s.store, types.TableNotes, byProject)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	resources, err := fetch[types.Resource](s.store, types.TableResources, byProject)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	ideas, err := fetch[types.Idea](s.store, types.TableIdeas, byProject)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.render(w, r, "project", p.Title, projectData{
		Project:    p,
		Notes:      notes,
		Resources:  resources,
		Ideas:      ideas,
		Statuses:   types.StatusOptions,
		Priorities: types.PriorityOptions,
		Today:      today(),
	})
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := parseMultipart(r); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := projectFromForm(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := update(s.store, types.TableProjects, id, p); err != nil {
		s.fail(w, r, err)
		return
	}
	redirect(w, r, fmt.Sprintf("/projects/%d", id))
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, found, err := get[types.Project](s.store, types.TableProjects, projectID); err != nil {
		s.serverError(w, r, err)
		return
	} else if !found {
		s.notFound(w, "project")
		return
	}

	if err := parseMultipart(r); err != nil {
		s.fail(w, r, err)
		return
	}
	n, err := noteFromForm(r, projectID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := insert(s.store, types.TableNotes, n)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	redirect(w, r, fmt.Sprintf("/projects/%d#note-%d", projectID, id))
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	existing, found, err := get[types.Note](s.store, types.TableNotes, id)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !found {
		s.notFound(w, "note")
		return
	}

	if err := parseMultipart(r); err != nil {
		s.fail(w, r, err)
		return
	}
	n, err := noteFromForm(r, existing.ProjectID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := update(s.store, types.TableNotes, id, n); err != nil {
		s.fail(w, r, err)
		return
	}
	redirect(w, r, fmt.Sprintf("/projects/%d#note-%d", existing.ProjectID, id))
}
