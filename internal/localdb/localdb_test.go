package localdb

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ymatsuki/goalsync/internal/schema"
)

// setupTestStore creates a temporary local store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "goals.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}
	return store
}

func testGoal(id int64, owner string) *schema.Goal {
	return &schema.Goal{
		ID:         id,
		Owner:      owner,
		Title:      "Run 5k",
		TargetYear: 2026,
		Progress:   0,
		Status:     schema.StatusActive,
		Tags:       []string{"health"},
		CreatedAt:  "2026-01-01T00:00:00Z",
	}
}

func TestInitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	if err := store.Init(ctx); err != nil {
		t.Fatalf("second Init: %v", err)
	}
	// Fresh handle against the same file re-runs the DDL for real.
	store.initialized = false
	if err := store.Init(ctx); err != nil {
		t.Fatalf("Init with existing schema: %v", err)
	}
}

func TestInsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	goal := testGoal(1, "alice")
	goal.Deadline = "2026-06-01"
	goal.Description = "couch to 5k"
	if err := store.Insert(ctx, goal); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := store.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !reflect.DeepEqual(got, goal) {
		t.Errorf("GetByID = %+v, want %+v", got, goal)
	}
}

func TestInsertDuplicateID(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	if err := store.Insert(ctx, testGoal(1, "alice")); err != nil {
		t.Fatalf("first Insert: %v", err)
	}
	err := store.Insert(ctx, testGoal(1, "alice"))
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate Insert err = %v, want ErrDuplicateID", err)
	}
}

func TestUpdateIsPartialAndIdempotent(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	if err := store.Insert(ctx, testGoal(1, "alice")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	progress := 40
	desc := "getting there"
	patch := schema.Patch{Progress: &progress, Description: &desc}

	if err := store.Update(ctx, 1, patch); err != nil {
		t.Fatalf("Update: %v", err)
	}
	once, err := store.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	// Same patch again must not change the stored record.
	if err := store.Update(ctx, 1, patch); err != nil {
		t.Fatalf("second Update: %v", err)
	}
	twice, err := store.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("update not idempotent: %+v vs %+v", once, twice)
	}

	if twice.Progress != 40 || twice.Description != "getting there" {
		t.Errorf("patched fields wrong: %+v", twice)
	}
	if twice.Status != schema.StatusActive || twice.Title != "Run 5k" {
		t.Errorf("unpatched fields changed: %+v", twice)
	}
}

func TestProgressDoesNotDeriveStatus(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	if err := store.Insert(ctx, testGoal(1, "alice")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	progress := 100
	if err := store.Update(ctx, 1, schema.Patch{Progress: &progress}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := store.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != schema.StatusActive {
		t.Errorf("progress=100 flipped status to %q, should stay active", got.Status)
	}
}

func TestUpdateAbsentIDIsNoop(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	if err := store.Insert(ctx, testGoal(1, "alice")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	progress := 99
	if err := store.Update(ctx, 42, schema.Patch{Progress: &progress}); err != nil {
		t.Errorf("Update of absent id should be a no-op, got %v", err)
	}

	got, err := store.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Progress != 0 {
		t.Errorf("existing record altered by absent-id update: %+v", got)
	}
}

func TestDeleteAbsentIDIsNoop(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	if err := store.Delete(ctx, 42); err != nil {
		t.Errorf("Delete of absent id should be a no-op, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	if err := store.Insert(ctx, testGoal(1, "alice")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := store.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.GetByID(ctx, 1); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetByID after delete: %v, want sql.ErrNoRows", err)
	}
}

func TestListByYearOrdering(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	june := testGoal(1, "alice")
	june.Deadline = "2026-06-01"
	january := testGoal(2, "alice")
	january.Deadline = "2026-01-01"
	noDeadline := testGoal(3, "alice")

	for _, g := range []*schema.Goal{june, january, noDeadline} {
		if err := store.Insert(ctx, g); err != nil {
			t.Fatalf("Insert %d: %v", g.ID, err)
		}
	}

	goals, err := store.ListByYear(ctx, "alice", 2026)
	if err != nil {
		t.Fatalf("ListByYear: %v", err)
	}

	// Deadline ascending, records without deadline last.
	wantOrder := []int64{2, 1, 3}
	if len(goals) != len(wantOrder) {
		t.Fatalf("got %d goals, want %d", len(goals), len(wantOrder))
	}
	for i, want := range wantOrder {
		if goals[i].ID != want {
			t.Errorf("position %d: id %d, want %d", i, goals[i].ID, want)
		}
	}
}

func TestListByYearScopesOwnerAndYear(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	mine := testGoal(1, "alice")
	otherYear := testGoal(2, "alice")
	otherYear.TargetYear = 2025
	otherOwner := testGoal(3, "bob")

	for _, g := range []*schema.Goal{mine, otherYear, otherOwner} {
		if err := store.Insert(ctx, g); err != nil {
			t.Fatalf("Insert %d: %v", g.ID, err)
		}
	}

	goals, err := store.ListByYear(ctx, "alice", 2026)
	if err != nil {
		t.Fatalf("ListByYear: %v", err)
	}
	if len(goals) != 1 || goals[0].ID != 1 {
		t.Errorf("ListByYear leaked across partition: %+v", goals)
	}
}

func TestReplacePartition(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	if err := store.Insert(ctx, testGoal(1, "alice")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := store.Insert(ctx, testGoal(2, "bob")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	replacement := []*schema.Goal{testGoal(10, "alice"), testGoal(11, "alice")}
	if err := store.ReplacePartition(ctx, "alice", replacement); err != nil {
		t.Fatalf("ReplacePartition: %v", err)
	}

	goals, err := store.ListByYear(ctx, "alice", 2026)
	if err != nil {
		t.Fatalf("ListByYear: %v", err)
	}
	gotIDs := idsOf(goals)
	if !reflect.DeepEqual(gotIDs, []int64{10, 11}) {
		t.Errorf("alice partition = %v, want [10 11]", gotIDs)
	}

	// Other owners are untouched.
	bobs, err := store.ListByYear(ctx, "bob", 2026)
	if err != nil {
		t.Fatalf("ListByYear: %v", err)
	}
	if len(bobs) != 1 || bobs[0].ID != 2 {
		t.Errorf("bob partition disturbed: %v", idsOf(bobs))
	}
}

func TestReplacePartitionEmptyClearsPartition(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	if err := store.Insert(ctx, testGoal(1, "alice")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := store.ReplacePartition(ctx, "alice", nil); err != nil {
		t.Fatalf("ReplacePartition: %v", err)
	}

	count, err := store.CountByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("CountByOwner: %v", err)
	}
	if count != 0 {
		t.Errorf("partition not cleared, %d goals remain", count)
	}
}

func TestReplacePartitionIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	before := testGoal(1, "alice")
	if err := store.Insert(ctx, before); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	// Second record collides with the first inside the batch, so the
	// insert loop fails partway through.
	bad := []*schema.Goal{testGoal(10, "alice"), testGoal(10, "alice"), testGoal(11, "alice")}
	if err := store.ReplacePartition(ctx, "alice", bad); err == nil {
		t.Fatal("expected ReplacePartition to fail on duplicate ids")
	}

	// The partition must be the pre-call state, never a mixture.
	goals, err := store.ListByYear(ctx, "alice", 2026)
	if err != nil {
		t.Fatalf("ListByYear: %v", err)
	}
	gotIDs := idsOf(goals)
	if !reflect.DeepEqual(gotIDs, []int64{1}) {
		t.Errorf("partition after failed replace = %v, want pre-call [1]", gotIDs)
	}
}

func TestYears(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	for i, year := range []int{2026, 2024, 2026, 2025} {
		g := testGoal(int64(i+1), "alice")
		g.TargetYear = year
		if err := store.Insert(ctx, g); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	years, err := store.Years(ctx, "alice")
	if err != nil {
		t.Fatalf("Years: %v", err)
	}
	if !reflect.DeepEqual(years, []int{2026, 2025, 2024}) {
		t.Errorf("Years = %v, want [2026 2025 2024]", years)
	}
}

func TestTags(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	a := testGoal(1, "alice")
	a.Tags = []string{"work", "health"}
	b := testGoal(2, "alice")
	b.Tags = []string{"health"}
	c := testGoal(3, "bob")
	c.Tags = []string{"secret"}

	for _, g := range []*schema.Goal{a, b, c} {
		if err := store.Insert(ctx, g); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	tags, err := store.Tags(ctx, "alice")
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if !reflect.DeepEqual(tags, []string{"health", "work"}) {
		t.Errorf("Tags = %v, want [health work]", tags)
	}
}

func TestEmptyTagsSurviveStorage(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	g := testGoal(1, "alice")
	g.Tags = []string{}
	if err := store.Insert(ctx, g); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := store.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Errorf("empty tags came back as %#v", got.Tags)
	}
}

func idsOf(goals []*schema.Goal) []int64 {
	ids := make([]int64, 0, len(goals))
	for _, g := range goals {
		ids = append(ids, g.ID)
	}
	return ids
}
