package sync

import (
	"context"

	"github.com/ymatsuki/goalsync/internal/schema"
)

// Local is the device-resident store the coordinator reads from and
// writes to first. Implemented by localdb.Store.
type Local interface {
	// Insert stores a new goal. Fails if the id already exists.
	Insert(ctx context.Context, goal *schema.Goal) error

	// Update applies a partial update. No-op if the id is absent.
	Update(ctx context.Context, id int64, patch schema.Patch) error

	// Delete removes a goal. No-op if the id is absent.
	Delete(ctx context.Context, id int64) error

	// GetByID returns a goal, or sql.ErrNoRows if absent.
	GetByID(ctx context.Context, id int64) (*schema.Goal, error)

	// ListByYear returns an owner's goals for one target year, ordered
	// by deadline ascending with deadline-less goals last.
	ListByYear(ctx context.Context, owner string, year int) ([]*schema.Goal, error)

	// ReplacePartition atomically replaces all of an owner's goals.
	ReplacePartition(ctx context.Context, owner string, goals []*schema.Goal) error
}

// Remote is the authoritative cross-device store. Implemented by
// remotedb.Store. All methods are blocking network calls.
type Remote interface {
	// Upsert inserts or fully replaces the row for goal.ID.
	Upsert(ctx context.Context, goal *schema.Goal) error

	// Delete removes a goal. No-op if the id is absent.
	Delete(ctx context.Context, id int64) error

	// SelectByOwner returns all goals for an owner, unordered.
	SelectByOwner(ctx context.Context, owner string) ([]*schema.Goal, error)
}
