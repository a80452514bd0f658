package types

import (
	"strings"
	"time"
)

// Note is a dated progress entry attached to a project.
type Note struct {
	ID           int64     `json:"id"`                      // Assigned on insert.
	ProjectID    int64     `json:"project_id"`              // Required; references Project.ID.
	ProjectTitle string    `json:"project_title,omitempty"` // Owning project title, filled on reads.
	NoteDate     time.Time `json:"note_date"`               // Required calendar date.
	Author       string    `json:"author,omitempty"`        // Optional.
	Content      string    `json:"content"`                 // Required, non-empty.
	NextAction   string    `json:"next_action,omitempty"`   // Optional.
	Progress     int       `json:"progress"`                // Percent, 0..100.
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate checks the fields the store requires.
func (n *Note) Validate() error {
	if n.ProjectID <= 0 {
		return ErrInvalidProject
	}
	if n.NoteDate.IsZero() {
		return ErrInvalidNoteDate
	}
	if strings.TrimSpace(n.Content) == "" {
		return ErrInvalidContent
	}
	if n.Progress < 0 || n.Progress > 100 {
		return ErrInvalidProgress
	}
	return nil
}
