// Package schema provides the goal record type shared by the local and
// remote stores, plus the tag codec that reconciles their encodings.
package schema

import (
	"fmt"
	"time"
)

// Goal statuses. Progress and status are independently settable: a goal
// at progress 100 is not forced to completed, and a completed goal may
// sit below 100. The caller decides when to flip the status.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Goal is a single tracked goal, partitioned by owner.
//
// IDs are generated client-side (see internal/ident) and must stay
// unique within an owner's partition for the record's lifetime. Owner
// and CreatedAt are immutable after creation.
type Goal struct {
	ID          int64    `json:"id"`
	Owner       string   `json:"owner"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	TargetYear  int      `json:"target_year"`
	Deadline    string   `json:"deadline,omitempty"` // YYYY-MM-DD, empty = none
	Progress    int      `json:"progress"`           // 0-100
	Status      string   `json:"status"`
	Tags        []string `json:"tags,omitempty"`
	CreatedAt   string   `json:"created_at"` // RFC 3339
}

// Validate checks that the goal can be persisted.
func (g *Goal) Validate() error {
	if g.ID == 0 {
		return fmt.Errorf("id is required")
	}
	if g.Owner == "" {
		return fmt.Errorf("owner is required")
	}
	if g.Title == "" {
		return fmt.Errorf("title is required")
	}
	if g.TargetYear == 0 {
		return fmt.Errorf("target_year is required")
	}
	if g.Progress < 0 || g.Progress > 100 {
		return fmt.Errorf("progress must be between 0 and 100 (got %d)", g.Progress)
	}
	if g.Status != StatusActive && g.Status != StatusCompleted {
		return fmt.Errorf("status must be %q or %q (got %q)", StatusActive, StatusCompleted, g.Status)
	}
	return nil
}

// SetDefaults applies default values for optional fields.
func (g *Goal) SetDefaults() {
	if g.Status == "" {
		g.Status = StatusActive
	}
	if g.Tags == nil {
		g.Tags = []string{}
	}
	if g.CreatedAt == "" {
		g.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
}

// Patch is a partial update of a goal's mutable fields. Nil fields are
// left untouched. Owner, title, target year and created_at are not
// patchable.
type Patch struct {
	Progress    *int
	Status      *string
	Description *string
	Deadline    *string
	Tags        *[]string
}

// IsEmpty reports whether the patch would change nothing.
func (p Patch) IsEmpty() bool {
	return p.Progress == nil && p.Status == nil && p.Description == nil &&
		p.Deadline == nil && p.Tags == nil
}
