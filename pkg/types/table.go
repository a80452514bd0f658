package types

import "errors"

// Table provides uniform record operations for a single entity type.
// Get and Fetch return any; callers type-assert to the concrete entity struct
// (*Project, *Note, *Resource, *Idea).
type Table interface {
	// Get retrieves the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Get(id int64) (any, error)

	// Insert appends a new entity, stamping CreatedAt and UpdatedAt.
	// Returns the newly assigned ID.
	Insert(data any) (int64, error)

	// Update overwrites every field of the entity with the given ID and
	// refreshes UpdatedAt. Updating an ID that does not exist changes
	// nothing and returns nil.
	Update(id int64, data any) error

	// Fetch returns all entities matching the filter, most recently
	// updated first. An empty filter returns every entity in the table.
	Fetch(filter map[string]any) ([]any, error)
}

// Table operation errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidID     = errors.New("invalid entity ID")
	ErrInvalidData   = errors.New("invalid entity data")
	ErrInvalidFilter = errors.New("invalid filter value type")
)

// Entity validation errors.
var (
	ErrInvalidTitle    = errors.New("title must not be empty")
	ErrInvalidContent  = errors.New("content must not be empty")
	ErrInvalidProgress = errors.New("progress must be between 0 and 100")
	ErrInvalidNoteDate = errors.New("note date is required")
	ErrInvalidProject  = errors.New("project reference is required")
)
