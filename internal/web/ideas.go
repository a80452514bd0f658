package web

import (
	"net/http"

	"github.com/mesh-intelligence/karte/internal/uploads"
	"github.com/mesh-intelligence/karte/pkg/types"
)

type ideasData struct {
	Ideas    []*types.Idea
	Projects []*types.Project
	Pinned   bool
}

func (s *Server) handleIdeas(w http.ResponseWriter, r *http.Request) {
	data := ideasData{Pinned: r.URL.Query().Get("pinned") == "1"}

	var filter map[string]any
	if data.Pinned {
		filter = map[string]any{"pinned": true}
	}

	var err error
	if data.Ideas, err = fetch[types.Idea](s.store, types.TableIdeas, filter); err != nil {
		s.serverError(w, r, err)
		return
	}
	if data.Projects, err = fetch[types.Project](s.store, types.TableProjects, nil); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, "ideas", "アイデアボード", data)
}

func (s *Server) handleCreateIdea(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(r); err != nil {
		s.fail(w, r, err)
		return
	}
	idea, err := ideaFromForm(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := checkProject(s.store, idea.ProjectID); err != nil {
		s.fail(w, r, err)
		return
	}
	if idea.ImagePath, err = s.saveImage(r); err != nil {
		s.serverError(w, r, err)
		return
	}
	if idea.Title == "" && idea.URL == "" && idea.Note == "" && idea.ImagePath == "" {
		s.badRequest(w, "an idea needs a title, url, note or image")
		return
	}
	if _, err := insert(s.store, types.TableIdeas, idea); err != nil {
		s.fail(w, r, err)
		return
	}
	redirect(w, r, backTo(r, "/ideas"))
}

// handleUpdateIdea overwrites an idea. The stored image is kept unless a
// new one is uploaded or clear_image is set.
func (s *Server) handleUpdateIdea(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	existing, found, err := get[types.Idea](s.store, types.TableIdeas, id)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !found {
		s.notFound(w, "idea")
		return
	}

	if err := parseMultipart(r); err != nil {
		s.fail(w, r, err)
		return
	}
	idea, err := ideaFromForm(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := checkProject(s.store, idea.ProjectID); err != nil {
		s.fail(w, r, err)
		return
	}
	image, err := s.saveImage(r)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	switch {
	case image != "":
		idea.ImagePath = image
	case !formBool(r, "clear_image"):
		idea.ImagePath = existing.ImagePath
	}

	if err := update(s.store, types.TableIdeas, id, idea); err != nil {
		s.fail(w, r, err)
		return
	}
	redirect(w, r, backTo(r, "/ideas"))
}

// saveImage stores the first file of the "image" field, if any.
func (s *Server) saveImage(r *http.Request) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}
	for _, fh := range r.MultipartForm.File["image"] {
		if fh.Filename == "" {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return "", err
		}
		defer f.Close()
		return s.uploads.Save(uploads.PrefixIdea, fh.Filename, f)
	}
	return "", nil
}
