package web

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/mesh-intelligence/karte/internal/uploads"
	"github.com/mesh-intelligence/karte/pkg/types"
)

// errField is a form validation failure answered with 400.
type errField struct {
	msg string
}

func (e errField) Error() string { return e.msg }

func fieldError(format string, args ...any) error {
	return errField{msg: fmt.Sprintf(format, args...)}
}

// isUserError reports whether err should be answered with 400 rather than 500.
func isUserError(err error) bool {
	var fe errField
	if errors.As(err, &fe) {
		return true
	}
	for _, target := range []error{
		types.ErrInvalidTitle,
		types.ErrInvalidContent,
		types.ErrInvalidProgress,
		types.ErrInvalidNoteDate,
		types.ErrInvalidProject,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// fail routes err to badRequest or serverError.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if isUserError(err) {
		s.badRequest(w, err.Error())
		return
	}
	s.serverError(w, r, err)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, fieldError("invalid id %q", mux.Vars(r)["id"])
	}
	return id, nil
}

func formText(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

func formBool(r *http.Request, key string) bool {
	switch r.FormValue(key) {
	case "on", "1", "true":
		return true
	}
	return false
}

func formDate(r *http.Request, key string) (*time.Time, error) {
	d, err := types.ParseDate(r.FormValue(key))
	if err != nil {
		return nil, fieldError("%s must be a date (YYYY-MM-DD)", key)
	}
	return d, nil
}

// formProjectID reads an optional project reference. Empty means none.
func formProjectID(r *http.Request) (*int64, error) {
	v := formText(r, "project_id")
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return nil, fieldError("invalid project_id %q", v)
	}
	return &id, nil
}

func projectFromForm(r *http.Request) (*types.Project, error) {
	p := &types.Project{
		Title:       formText(r, "title"),
		Client:      formText(r, "client"),
		Status:      formText(r, "status"),
		Priority:    formText(r, "priority"),
		Owner:       formText(r, "owner"),
		Description: formText(r, "description"),
		Archived:    formBool(r, "archived"),
	}
	if p.Title == "" {
		return nil, fieldError("title is required")
	}
	if p.Status != "" && !types.IsValidStatus(p.Status) {
		return nil, fieldError("unknown status %q", p.Status)
	}
	if p.Priority != "" && !types.IsValidPriority(p.Priority) {
		return nil, fieldError("unknown priority %q", p.Priority)
	}

	var err error
	if p.StartDate, err = formDate(r, "start_date"); err != nil {
		return nil, err
	}
	if p.DueDate, err = formDate(r, "due_date"); err != nil {
		return nil, err
	}
	return p, nil
}

func noteFromForm(r *http.Request, projectID int64) (*types.Note, error) {
	n := &types.Note{
		ProjectID:  projectID,
		Author:     formText(r, "author"),
		Content:    formText(r, "content"),
		NextAction: formText(r, "next_action"),
	}
	d, err := formDate(r, "note_date")
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fieldError("note_date is required")
	}
	n.NoteDate = *d
	if n.Content == "" {
		return nil, fieldError("content is required")
	}
	if v := formText(r, "progress"); v != "" {
		progress, err := strconv.Atoi(v)
		if err != nil {
			return nil, fieldError("progress must be a number")
		}
		n.Progress = progress
	}
	return n, nil
}

func resourceFromForm(r *http.Request) (*types.Resource, error) {
	projectID, err := formProjectID(r)
	if err != nil {
		return nil, err
	}
	res := &types.Resource{
		ProjectID: projectID,
		Title:     formText(r, "title"),
		Kind:      formText(r, "kind"),
		URL:       formText(r, "url"),
		Tags:      formText(r, "tags"),
		Note:      formText(r, "note"),
	}
	if res.Kind != "" && !types.IsValidResourceKind(res.Kind) {
		return nil, fieldError("unknown kind %q", res.Kind)
	}
	return res, nil
}

func ideaFromForm(r *http.Request) (*types.Idea, error) {
	projectID, err := formProjectID(r)
	if err != nil {
		return nil, err
	}
	return &types.Idea{
		ProjectID: projectID,
		Title:     formText(r, "title"),
		URL:       formText(r, "url"),
		Note:      formText(r, "note"),
		Tags:      formText(r, "tags"),
		Pinned:    formBool(r, "pinned"),
	}, nil
}

// parseMultipart parses a multipart body when the request carries one;
// plain url-encoded forms are accepted too.
func parseMultipart(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			return fieldError("malformed upload: %v", err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return fieldError("malformed form: %v", err)
	}
	return nil
}

// saveUploads stores every non-empty file under key and returns the joined
// relative paths.
func (s *Server) saveUploads(r *http.Request, key, prefix string) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}
	var files []uploads.File
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, fh := range r.MultipartForm.File[key] {
		if fh.Filename == "" {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return "", fmt.Errorf("open upload %s: %w", fh.Filename, err)
		}
		opened = append(opened, f)
		files = append(files, uploads.File{Name: fh.Filename, Reader: f})
	}
	return s.uploads.SaveAll(prefix, files)
}

// today is the default note date offered by the forms.
func today() string {
	return time.Now().Format(types.DateLayout)
}
