package types

import (
	"strings"
	"time"
)

// Resource kinds.
const (
	ResourceKindDrive = "Drive"
	ResourceKindWeb   = "Web"
	ResourceKindImage = "Image"
	ResourceKindLocal = "Local"
	ResourceKindOther = "Other"
)

// ResourceKinds lists the resource kinds in display order.
var ResourceKinds = []string{
	ResourceKindDrive,
	ResourceKindWeb,
	ResourceKindImage,
	ResourceKindLocal,
	ResourceKindOther,
}

// LocalPathSeparator joins the paths of several uploaded files in
// Resource.LocalPath.
const LocalPathSeparator = ";"

// Resource is an external link or uploaded file, optionally attached to a
// project.
type Resource struct {
	ID           int64     `json:"id"`                      // Assigned on insert.
	ProjectID    *int64    `json:"project_id"`              // Optional; nil for unattached resources.
	ProjectTitle string    `json:"project_title,omitempty"` // Owning project title, filled on reads.
	Title        string    `json:"title,omitempty"`
	Kind         string    `json:"kind"` // One of ResourceKinds by convention.
	URL          string    `json:"url,omitempty"`
	LocalPath    string    `json:"local_path,omitempty"` // Relative upload paths joined with LocalPathSeparator.
	Tags         string    `json:"tags,omitempty"`       // Comma-separated by convention, not normalized.
	Note         string    `json:"note,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LocalPaths splits LocalPath into its individual upload paths.
func (r *Resource) LocalPaths() []string {
	return SplitPaths(r.LocalPath)
}

// ApplyDefaults sets Kind to ResourceKindOther when it is empty.
func (r *Resource) ApplyDefaults() {
	if r.Kind == "" {
		r.Kind = ResourceKindOther
	}
}

// IsValidResourceKind reports whether s is one of ResourceKinds.
func IsValidResourceKind(s string) bool {
	return contains(ResourceKinds, s)
}

// SplitPaths splits a LocalPathSeparator-joined field, dropping blanks.
func SplitPaths(joined string) []string {
	var paths []string
	for _, p := range strings.Split(joined, LocalPathSeparator) {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// JoinPaths joins upload paths into a single LocalPath field.
func JoinPaths(paths []string) string {
	return strings.Join(paths, LocalPathSeparator)
}
