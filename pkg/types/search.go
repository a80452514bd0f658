package types

import "time"

// Kind tags a search hit with the entity type it came from.
type Kind string

// Search hit kinds.
const (
	KindProject  Kind = "project"
	KindNote     Kind = "note"
	KindResource Kind = "resource"
	KindIdea     Kind = "idea"
)

// SearchKinds lists the kinds in the order the search visits them. Hits
// with equal timestamps keep this order.
var SearchKinds = []Kind{KindProject, KindNote, KindResource, KindIdea}

// TableName returns the table that holds entities of this kind.
func (k Kind) TableName() string {
	switch k {
	case KindProject:
		return TableProjects
	case KindNote:
		return TableNotes
	case KindResource:
		return TableResources
	case KindIdea:
		return TableIdeas
	default:
		return ""
	}
}

// SearchHit is one record matched by a search. Exactly one of Project,
// Note, Resource and Idea is set, matching Kind.
type SearchHit struct {
	Kind         Kind
	ProjectTitle *string   // Owning project title; nil when unattached.
	UpdatedAt    time.Time // Zero when the stored value did not parse.
	NoteDate     time.Time // Set for note hits only.

	Project  *Project
	Note     *Note
	Resource *Resource
	Idea     *Idea
}

// ID returns the ID of the matched entity.
func (h SearchHit) ID() int64 {
	switch {
	case h.Project != nil:
		return h.Project.ID
	case h.Note != nil:
		return h.Note.ID
	case h.Resource != nil:
		return h.Resource.ID
	case h.Idea != nil:
		return h.Idea.ID
	}
	return 0
}

// Summary returns a one-line description of the matched entity for
// listings: the title, or the note content.
func (h SearchHit) Summary() string {
	switch {
	case h.Project != nil:
		return h.Project.Title
	case h.Note != nil:
		return h.Note.Content
	case h.Resource != nil:
		return firstNonEmpty(h.Resource.Title, h.Resource.URL, h.Resource.LocalPath)
	case h.Idea != nil:
		return firstNonEmpty(h.Idea.Title, h.Idea.URL, h.Idea.Note)
	}
	return ""
}

// ProjectID returns the ID of the owning project, if any. For project
// hits it is the project's own ID.
func (h SearchHit) ProjectID() (int64, bool) {
	switch {
	case h.Project != nil:
		return h.Project.ID, true
	case h.Note != nil:
		return h.Note.ProjectID, true
	case h.Resource != nil && h.Resource.ProjectID != nil:
		return *h.Resource.ProjectID, true
	case h.Idea != nil && h.Idea.ProjectID != nil:
		return *h.Idea.ProjectID, true
	}
	return 0, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
