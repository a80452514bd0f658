package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/mesh-intelligence/karte/internal/uploads"
	"github.com/mesh-intelligence/karte/pkg/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var funcs = template.FuncMap{
	"date": types.FormatDate,
	"day": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(types.DateLayout)
	},
	"stamp": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("2006-01-02 15:04")
	},
	"paths": uploads.Split,
	"isID": func(p *int64, id int64) bool {
		return p != nil && *p == id
	},
	"choices": func(projects []*types.Project, selected *int64) projectChoices {
		return projectChoices{Projects: projects, Selected: selected}
	},
	"kindLabel": kindLabel,
	"hitURL":    hitURL,
}

// projectChoices feeds the shared project <select> options.
type projectChoices struct {
	Projects []*types.Project
	Selected *int64
}

var kindLabels = map[types.Kind]string{
	types.KindProject:  "案件",
	types.KindNote:     "ノート",
	types.KindResource: "資料",
	types.KindIdea:     "アイデア",
}

func kindLabel(k types.Kind) string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

// pages maps a page name to its template set; each page is parsed together
// with the shared layout.
var pages = map[string]*template.Template{
	"dashboard": parsePage("dashboard"),
	"project":   parsePage("project"),
	"resources": parsePage("resources"),
	"ideas":     parsePage("ideas"),
	"search":    parsePage("search"),
}

func parsePage(name string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS,
		"templates/layout.tmpl", "templates/"+name+".tmpl"))
}

// page is the data every template receives.
type page struct {
	Title string
	Data  any
}

// render executes a page into a buffer first so a template failure yields
// a clean 500 instead of a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	var buf bytes.Buffer
	if err := pages[name].ExecuteTemplate(&buf, name+".tmpl", page{Title: title, Data: data}); err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// badRequest reports a missing or malformed form field.
func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	http.Error(w, msg, http.StatusBadRequest)
}

// serverError reports a store or I/O failure and logs it.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error().Err(err).
		Str("request_id", requestID(r)).
		Str("path", r.URL.Path).
		Msg("request failed")
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func (s *Server) notFound(w http.ResponseWriter, what string) {
	http.Error(w, what+" not found", http.StatusNotFound)
}

// redirect answers a POST with a 303 so a reload does not resubmit.
func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}
