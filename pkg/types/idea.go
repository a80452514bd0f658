package types

import "time"

// Idea is a freeform memo on the idea board: a URL, an image, or text,
// optionally pinned and optionally tied to a project.
type Idea struct {
	ID           int64     `json:"id"`                      // Assigned on insert.
	ProjectID    *int64    `json:"project_id"`              // Optional; nil for unattached ideas.
	ProjectTitle string    `json:"project_title,omitempty"` // Owning project title, filled on reads.
	Title        string    `json:"title,omitempty"`
	URL          string    `json:"url,omitempty"`
	ImagePath    string    `json:"image_path,omitempty"` // Relative upload path.
	Note         string    `json:"note,omitempty"`
	Tags         string    `json:"tags,omitempty"`
	Pinned       bool      `json:"pinned"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
