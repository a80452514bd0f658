package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/karte/internal/uploads"
	"github.com/mesh-intelligence/karte/pkg/types"
)

type resourcesData struct {
	Resources []*types.Resource
	Projects  []*types.Project
	Kinds     []string
	Kind      string
	ProjectID string
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := resourcesData{
		Kinds:     types.ResourceKinds,
		Kind:      strings.TrimSpace(q.Get("kind")),
		ProjectID: strings.TrimSpace(q.Get("project_id")),
	}

	filter := map[string]any{}
	if data.Kind != "" {
		filter["kind"] = data.Kind
	}
	switch data.ProjectID {
	case "":
	case "none":
		filter["unattached"] = true
	default:
		id, err := strconv.ParseInt(data.ProjectID, 10, 64)
		if err != nil {
			s.badRequest(w, fmt.Sprintf("invalid project_id %q", data.ProjectID))
			return
		}
		filter["project_id"] = id
	}

	var err error
	if data.Resources, err = fetch[types.Resource](s.store, types.TableResources, filter); err != nil {
		s.serverError(w, r, err)
		return
	}
	if data.Projects, err = fetch[types.Project](s.store, types.TableProjects, nil); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, "resources", "資料", data)
}

func (s *Server) handleCreateResource(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(r); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := resourceFromForm(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := checkProject(s.store, res.ProjectID); err != nil {
		s.fail(w, r, err)
		return
	}
	if res.LocalPath, err = s.saveUploads(r, "files", uploads.PrefixResource); err != nil {
		s.serverError(w, r, err)
		return
	}
	if res.Title == "" && res.URL == "" && res.LocalPath == "" {
		s.badRequest(w, "a title, url or file is required")
		return
	}
	if _, err := insert(s.store, types.TableResources, res); err != nil {
		s.fail(w, r, err)
		return
	}
	redirect(w, r, backTo(r, "/resources"))
}

// handleUpdateResource overwrites a resource. Newly uploaded files are
// appended to the stored ones unless clear_files is set.
func (s *Server) handleUpdateResource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	existing, found, err := get[types.Resource](s.store, types.TableResources, id)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !found {
		s.notFound(w, "resource")
		return
	}

	if err := parseMultipart(r); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := resourceFromForm(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := checkProject(s.store, res.ProjectID); err != nil {
		s.fail(w, r, err)
		return
	}
	added, err := s.saveUploads(r, "files", uploads.PrefixResource)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	var paths []string
	if !formBool(r, "clear_files") {
		paths = existing.LocalPaths()
	}
	res.LocalPath = types.JoinPaths(append(paths, uploads.Split(added)...))

	if err := update(s.store, types.TableResources, id, res); err != nil {
		s.fail(w, r, err)
		return
	}
	redirect(w, r, backTo(r, "/resources"))
}

// backTo returns the form's "back" field when it is a local path, else def.
func backTo(r *http.Request, def string) string {
	back := r.FormValue("back")
	if strings.HasPrefix(back, "/") && !strings.HasPrefix(back, "//") {
		return back
	}
	return def
}
