package types

import (
	"strings"
	"time"
)

// Project status values. The labels are the ones the UI shows; the store
// persists any string.
const (
	StatusIntake           = "問診待ち"
	StatusInProgress       = "診察中"
	StatusTesting          = "検査中"
	StatusAwaitingDelivery = "処方・納品待ち"
	StatusMonitoring       = "経過観察"
	StatusDone             = "完了"
	StatusCancelled        = "中止"
)

// StatusOptions lists the project statuses in display order.
var StatusOptions = []string{
	StatusIntake,
	StatusInProgress,
	StatusTesting,
	StatusAwaitingDelivery,
	StatusMonitoring,
	StatusDone,
	StatusCancelled,
}

// Project priority values.
const (
	PriorityLow    = "低"
	PriorityMedium = "中"
	PriorityHigh   = "高"
	PriorityUrgent = "緊急"
)

// PriorityOptions lists the project priorities in display order.
var PriorityOptions = []string{
	PriorityLow,
	PriorityMedium,
	PriorityHigh,
	PriorityUrgent,
}

// Defaults applied on insert when the field is empty.
const (
	DefaultStatus   = StatusInProgress
	DefaultPriority = PriorityMedium
)

// DateLayout is the storage and display layout for calendar dates.
const DateLayout = "2006-01-02"

// Project is a case: the top-level unit of work being tracked.
type Project struct {
	ID          int64      `json:"id"`                    // Assigned on insert.
	Title       string     `json:"title"`                 // Required, non-empty.
	Client      string     `json:"client,omitempty"`      // Optional.
	Status      string     `json:"status"`                // One of StatusOptions by convention.
	Priority    string     `json:"priority"`              // One of PriorityOptions by convention.
	Owner       string     `json:"owner,omitempty"`       // Optional.
	StartDate   *time.Time `json:"start_date,omitempty"`  // Optional calendar date.
	DueDate     *time.Time `json:"due_date,omitempty"`    // Optional calendar date.
	Description string     `json:"description,omitempty"` // Optional.
	Archived    bool       `json:"archived"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Validate checks the fields the store requires.
// Returns ErrInvalidTitle if the title is blank.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrInvalidTitle
	}
	return nil
}

// ApplyDefaults fills status and priority when they are empty.
func (p *Project) ApplyDefaults() {
	if p.Status == "" {
		p.Status = DefaultStatus
	}
	if p.Priority == "" {
		p.Priority = DefaultPriority
	}
}

// IsValidStatus reports whether s is one of StatusOptions.
func IsValidStatus(s string) bool {
	return contains(StatusOptions, s)
}

// IsValidPriority reports whether s is one of PriorityOptions.
func IsValidPriority(s string) bool {
	return contains(PriorityOptions, s)
}

// ParseDate parses a calendar date in DateLayout. An empty string yields nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FormatDate renders d in DateLayout, or "" when d is nil.
func FormatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(DateLayout)
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
