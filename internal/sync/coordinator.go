package sync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ymatsuki/goalsync/internal/ident"
	"github.com/ymatsuki/goalsync/internal/localdb"
	"github.com/ymatsuki/goalsync/internal/schema"
)

// idRetries bounds the duplicate-id retry loop in CreateGoal. The
// generator is millisecond-clock based, so a collision with a record
// that synced in from another device resolves after a bump or two.
const idRetries = 5

// Coordinator owns all record transfer between the local and remote
// stores and exposes the mutation operations the application calls.
//
// A nil remote puts the coordinator in offline mode: every sync step
// becomes a logged no-op and the local store is the whole world.
type Coordinator struct {
	local  Local
	remote Remote
	ids    *ident.Generator
	logger *log.Logger
}

// New creates a Coordinator.
//
// The local store must be opened and initialized before it is passed
// in. remote may be nil for offline use. If logger is nil, a default
// logger writing to stderr is used.
func New(local Local, remote Remote, ids *ident.Generator, logger *log.Logger) *Coordinator {
	if ids == nil {
		ids = ident.New()
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &Coordinator{
		local:  local,
		remote: remote,
		ids:    ids,
		logger: logger,
	}
}

// SyncDown replaces the owner's local partition with the remote one.
// Called once at session start, before the first local read.
//
// On remote failure the local partition is left untouched and the
// error is returned; callers are expected to log it and proceed with
// local data. A successful fetch of zero records still clears the
// partition: remote is truth, and "no goals" is a real state.
func (c *Coordinator) SyncDown(ctx context.Context, owner string) error {
	if c.remote == nil {
		c.logger.Printf("No remote configured, skipping sync-down for %s", owner)
		return nil
	}

	goals, err := c.remote.SelectByOwner(ctx, owner)
	if err != nil {
		return fmt.Errorf("sync-down aborted, local data unchanged: %w", err)
	}

	for _, goal := range goals {
		if goal.Tags == nil {
			goal.Tags = []string{}
		}
	}

	if err := c.local.ReplacePartition(ctx, owner, goals); err != nil {
		return fmt.Errorf("failed to materialize remote goals locally: %w", err)
	}

	c.logger.Printf("Synced down %d goals for %s", len(goals), owner)
	return nil
}

// SyncUp pushes one post-mutation record to the remote store.
//
// Best-effort by design: the local write is already committed, so a
// failed push is logged and swallowed rather than rolled back or
// surfaced. The stores reconverge at the next successful sync-down.
func (c *Coordinator) SyncUp(ctx context.Context, goal *schema.Goal) {
	if c.remote == nil {
		return
	}
	if err := c.remote.Upsert(ctx, goal); err != nil {
		c.logger.Printf("WARNING: failed to push goal %d: %v", goal.ID, err)
		return
	}
	c.logger.Printf("Pushed goal %d (%s)", goal.ID, goal.Title)
}

// SyncDelete removes a goal locally, then attempts the remote delete
// with the same best-effort policy as SyncUp. The local delete is the
// one that can fail the operation.
func (c *Coordinator) SyncDelete(ctx context.Context, id int64) error {
	if err := c.local.Delete(ctx, id); err != nil {
		return err
	}

	if c.remote != nil {
		if err := c.remote.Delete(ctx, id); err != nil {
			c.logger.Printf("WARNING: failed to delete goal %d remotely: %v", id, err)
		} else {
			c.logger.Printf("Deleted goal %d remotely", id)
		}
	}
	return nil
}

// CreateFields are the caller-supplied fields of a new goal.
type CreateFields struct {
	Title       string
	Description string
	TargetYear  int
	Deadline    string
	Tags        []string
}

// CreateGoal registers a new goal for owner: generates an id, stamps
// created_at, writes the local store, then pushes best-effort.
//
// A duplicate id (clock collision with a synced-in record) retries
// with a fresh id a few times before giving up.
func (c *Coordinator) CreateGoal(ctx context.Context, owner string, fields CreateFields) (*schema.Goal, error) {
	goal := &schema.Goal{
		Owner:       owner,
		Title:       fields.Title,
		Description: fields.Description,
		TargetYear:  fields.TargetYear,
		Deadline:    fields.Deadline,
		Tags:        fields.Tags,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	goal.SetDefaults()

	var err error
	for i := 0; i < idRetries; i++ {
		goal.ID = c.ids.Next()
		err = c.local.Insert(ctx, goal)
		if err == nil {
			c.SyncUp(ctx, goal)
			return goal, nil
		}
		if !errors.Is(err, localdb.ErrDuplicateID) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("failed to allocate a unique goal id: %w", err)
}

// UpdateGoal applies a partial update locally and pushes the resulting
// record. Returns the post-mutation record, or nil if the id is absent
// (a no-op, matching the local store's policy).
func (c *Coordinator) UpdateGoal(ctx context.Context, id int64, patch schema.Patch) (*schema.Goal, error) {
	if err := c.local.Update(ctx, id, patch); err != nil {
		return nil, err
	}

	goal, err := c.local.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	c.SyncUp(ctx, goal)
	return goal, nil
}

// DeleteGoal removes a goal from both stores. See SyncDelete.
func (c *Coordinator) DeleteGoal(ctx context.Context, id int64) error {
	return c.SyncDelete(ctx, id)
}

// LoadGoals reads an owner's goals for one target year from the local
// store. Reads never touch the remote.
func (c *Coordinator) LoadGoals(ctx context.Context, owner string, year int) ([]*schema.Goal, error) {
	return c.local.ListByYear(ctx, owner, year)
}
