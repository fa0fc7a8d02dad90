// Package localdb provides the embedded SQLite store that holds the
// device-resident copy of a user's goals.
//
// The local store is the only store the application reads from. It is
// refreshed from the remote store at session start (sync-down) and
// written first on every mutation, so the app stays fully usable
// offline. Tags are flattened to a JSON array in a TEXT column because
// SQLite has no native list type; internal/schema owns that codec.
package localdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ymatsuki/goalsync/internal/schema"

	"github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// ErrDuplicateID is returned by Insert when a goal with the same id
// already exists. Updates and deletes of absent ids are deliberately
// not errors; duplicate inserts are, because a silently replaced goal
// would mask an identifier collision.
var ErrDuplicateID = errors.New("goal id already exists")

// Store wraps the SQLite connection for the local goals database.
type Store struct {
	conn        *sql.DB
	path        string
	initialized bool
}

// Open creates a connection to the local database at the given path,
// creating parent directories as needed.
//
// The database is opened in WAL mode. The caller must call Close when
// done.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{conn: conn, path: path}

	if _, err := s.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := s.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return s, nil
}

// Close closes the connection, checkpointing the WAL first.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.conn = nil
	return nil
}

// Init creates the goals schema if it does not exist. Idempotent; the
// in-process flag only skips the redundant round trip, the DDL itself
// is IF NOT EXISTS either way.
func (s *Store) Init(ctx context.Context) error {
	if s.initialized {
		return nil
	}

	ddl := `
	CREATE TABLE IF NOT EXISTS goals (
		id INTEGER PRIMARY KEY,
		owner TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		target_year INTEGER NOT NULL,
		deadline TEXT,
		progress INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		tags TEXT,  -- JSON array
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_goals_owner ON goals(owner);
	CREATE INDEX IF NOT EXISTS idx_goals_owner_year ON goals(owner, target_year);
	`

	if _, err := s.conn.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	s.initialized = true
	return nil
}

// Insert stores a new goal. Returns ErrDuplicateID if the id is taken.
func (s *Store) Insert(ctx context.Context, goal *schema.Goal) error {
	if err := goal.Validate(); err != nil {
		return fmt.Errorf("invalid goal: %w", err)
	}

	tagsJSON, err := schema.EncodeTags(goal.Tags)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO goals (
		id, owner, title, description, target_year,
		deadline, progress, status, tags, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.conn.ExecContext(ctx, query,
		goal.ID,
		goal.Owner,
		goal.Title,
		goal.Description,
		goal.TargetYear,
		emptyToNull(goal.Deadline),
		goal.Progress,
		goal.Status,
		tagsJSON,
		goal.CreatedAt,
	)
	if err != nil {
		if isConstraintErr(err) {
			return fmt.Errorf("goal %d: %w", goal.ID, ErrDuplicateID)
		}
		return fmt.Errorf("failed to insert goal %d: %w", goal.ID, err)
	}

	return nil
}

// Update applies a partial update to the goal's mutable fields.
//
// An absent id is a no-op, not an error: a concurrent sync-down may
// have removed the record, and the caller's intent (record gone or
// updated) is satisfied either way.
func (s *Store) Update(ctx context.Context, id int64, patch schema.Patch) error {
	if patch.IsEmpty() {
		return nil
	}

	var sets []string
	var args []interface{}

	if patch.Progress != nil {
		sets = append(sets, "progress = ?")
		args = append(args, *patch.Progress)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Deadline != nil {
		sets = append(sets, "deadline = ?")
		args = append(args, emptyToNull(*patch.Deadline))
	}
	if patch.Tags != nil {
		tagsJSON, err := schema.EncodeTags(*patch.Tags)
		if err != nil {
			return err
		}
		sets = append(sets, "tags = ?")
		args = append(args, tagsJSON)
	}

	query := "UPDATE goals SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)

	if _, err := s.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update goal %d: %w", id, err)
	}
	return nil
}

// Delete removes a goal. No-op if the id is absent.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.conn.ExecContext(ctx, "DELETE FROM goals WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete goal %d: %w", id, err)
	}
	return nil
}

// GetByID retrieves a single goal. Returns sql.ErrNoRows if absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*schema.Goal, error) {
	row := s.conn.QueryRowContext(ctx, selectCols+" FROM goals WHERE id = ?", id)
	return scanGoalRow(row)
}

// ListByYear returns all of an owner's goals for the given target year,
// ordered by deadline ascending with deadline-less goals last, ties
// broken by id.
func (s *Store) ListByYear(ctx context.Context, owner string, year int) ([]*schema.Goal, error) {
	query := selectCols + `
	FROM goals
	WHERE owner = ? AND target_year = ?
	ORDER BY deadline IS NULL, deadline ASC, id ASC
	`

	rows, err := s.conn.QueryContext(ctx, query, owner, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	return scanGoals(rows)
}

// ReplacePartition replaces every goal belonging to owner with the
// given records, in one transaction. Used only by sync-down; either the
// whole partition becomes exactly goals, or (on failure) it is left as
// it was. An empty goals slice clears the partition.
func (s *Store) ReplacePartition(ctx context.Context, owner string, goals []*schema.Goal) (err error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM goals WHERE owner = ?", owner); err != nil {
		return fmt.Errorf("failed to clear partition for %s: %w", owner, err)
	}

	query := `
	INSERT INTO goals (
		id, owner, title, description, target_year,
		deadline, progress, status, tags, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, goal := range goals {
		tagsJSON, err := schema.EncodeTags(goal.Tags)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, query,
			goal.ID,
			goal.Owner,
			goal.Title,
			goal.Description,
			goal.TargetYear,
			emptyToNull(goal.Deadline),
			goal.Progress,
			goal.Status,
			tagsJSON,
			goal.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert goal %d during replace: %w", goal.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit partition replace: %w", err)
	}
	return nil
}

// Years returns the distinct target years of an owner's goals,
// descending. Feeds the year picker.
func (s *Store) Years(ctx context.Context, owner string) ([]int, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT DISTINCT target_year FROM goals WHERE owner = ? ORDER BY target_year DESC", owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("failed to scan year: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// Tags returns the distinct tag values across an owner's goals, sorted.
// Feeds the tag filter.
func (s *Store) Tags(ctx context.Context, owner string) ([]string, error) {
	query := `
	SELECT DISTINCT json_each.value
	FROM goals, json_each(goals.tags)
	WHERE goals.owner = ?
	ORDER BY json_each.value
	`

	rows, err := s.conn.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// CountByOwner returns the number of goals stored for an owner.
func (s *Store) CountByOwner(ctx context.Context, owner string) (int, error) {
	var count int
	err := s.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM goals WHERE owner = ?", owner).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count goals: %w", err)
	}
	return count, nil
}

const selectCols = `
	SELECT id, owner, title, description, target_year,
	       deadline, progress, status, tags, created_at`

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanGoal(sc scanner) (*schema.Goal, error) {
	var goal schema.Goal
	var description, deadline, tagsJSON sql.NullString

	err := sc.Scan(
		&goal.ID,
		&goal.Owner,
		&goal.Title,
		&description,
		&goal.TargetYear,
		&deadline,
		&goal.Progress,
		&goal.Status,
		&tagsJSON,
		&goal.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	goal.Description = description.String
	goal.Deadline = deadline.String

	var tagsVal any
	if tagsJSON.Valid {
		tagsVal = tagsJSON.String
	}
	goal.Tags, err = schema.DecodeTags(tagsVal)
	if err != nil {
		return nil, fmt.Errorf("goal %d: %w", goal.ID, err)
	}

	return &goal, nil
}

func scanGoalRow(row *sql.Row) (*schema.Goal, error) {
	goal, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan goal: %w", err)
	}
	return goal, nil
}

func scanGoals(rows *sql.Rows) ([]*schema.Goal, error) {
	var goals []*schema.Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}
	return goals, nil
}

func emptyToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isConstraintErr(err error) bool {
	var serr *sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code() == sqlite3.CONSTRAINT
	}
	return false
}
