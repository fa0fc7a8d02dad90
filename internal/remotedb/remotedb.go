// Package remotedb provides the authoritative Postgres-backed goal
// store shared across devices and sessions.
//
// The schema mirrors the local store's goals table, except tags are a
// native text[] column instead of flattened JSON. All operations are
// blocking network calls; transport failures wrap ErrUnreachable so
// the sync layer can classify them.
package remotedb

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ymatsuki/goalsync/internal/schema"
)

// ErrUnreachable marks a remote operation that failed at the transport
// or engine level. Callers check it with errors.Is.
var ErrUnreachable = errors.New("remote store unreachable")

// Store wraps a pgx connection pool for the remote goals table.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool against the given DSN and verifies connectivity.
// The caller must call Close when done.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping remote: %w: %v", ErrUnreachable, err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Init creates the remote goals table if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS goals (
		id BIGINT PRIMARY KEY,
		owner TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		target_year INTEGER NOT NULL,
		deadline TEXT,
		progress INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		tags TEXT[],
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_goals_owner ON goals(owner);
	`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to initialize remote schema: %w: %v", ErrUnreachable, err)
	}
	return nil
}

// Upsert inserts the goal or replaces the full row if the id exists.
// This is insert-or-replace, not a merge: every mutable column takes
// the incoming value, last writer wins.
func (s *Store) Upsert(ctx context.Context, goal *schema.Goal) error {
	if err := goal.Validate(); err != nil {
		return fmt.Errorf("invalid goal: %w", err)
	}

	tags := goal.Tags
	if tags == nil {
		tags = []string{}
	}

	const q = `
	INSERT INTO goals (
		id, owner, title, description, target_year,
		deadline, progress, status, tags, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE SET
		owner = excluded.owner,
		title = excluded.title,
		description = excluded.description,
		target_year = excluded.target_year,
		deadline = excluded.deadline,
		progress = excluded.progress,
		status = excluded.status,
		tags = excluded.tags,
		created_at = excluded.created_at
	`

	_, err := s.pool.Exec(ctx, q,
		goal.ID,
		goal.Owner,
		goal.Title,
		nullIfEmpty(goal.Description),
		goal.TargetYear,
		nullIfEmpty(goal.Deadline),
		goal.Progress,
		goal.Status,
		tags,
		goal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert goal %d: %w: %v", goal.ID, ErrUnreachable, err)
	}
	return nil
}

// Delete removes a goal. No-op if the id is absent.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM goals WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete goal %d: %w: %v", id, ErrUnreachable, err)
	}
	return nil
}

// SelectByOwner returns all goals for an owner. No ordering guarantee;
// the sync layer imposes order when it materializes records locally.
func (s *Store) SelectByOwner(ctx context.Context, owner string) ([]*schema.Goal, error) {
	const q = `
	SELECT id, owner, title, description, target_year,
	       deadline, progress, status, tags, created_at
	FROM goals
	WHERE owner = $1
	`

	rows, err := s.pool.Query(ctx, q, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals for %s: %w: %v", owner, ErrUnreachable, err)
	}
	defer rows.Close()

	var goals []*schema.Goal
	for rows.Next() {
		var goal schema.Goal
		var description, deadline *string
		var tags []string

		err := rows.Scan(
			&goal.ID,
			&goal.Owner,
			&goal.Title,
			&description,
			&goal.TargetYear,
			&deadline,
			&goal.Progress,
			&goal.Status,
			&tags,
			&goal.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan remote goal: %w", err)
		}

		if description != nil {
			goal.Description = *description
		}
		if deadline != nil {
			goal.Deadline = *deadline
		}
		goal.Tags, err = schema.DecodeTags(tags)
		if err != nil {
			return nil, fmt.Errorf("goal %d: %w", goal.ID, err)
		}

		goals = append(goals, &goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating remote goals: %w: %v", ErrUnreachable, err)
	}

	return goals, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
