package schema

import (
	"strings"
	"testing"
)

func validGoal() *Goal {
	return &Goal{
		ID:         1700000000000,
		Owner:      "alice",
		Title:      "Run 5k",
		TargetYear: 2026,
		Status:     StatusActive,
		CreatedAt:  "2026-01-01T00:00:00Z",
	}
}

func TestGoalValidate(t *testing.T) {
	if err := validGoal().Validate(); err != nil {
		t.Fatalf("valid goal rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Goal)
		wantErr string
	}{
		{"missing id", func(g *Goal) { g.ID = 0 }, "id"},
		{"missing owner", func(g *Goal) { g.Owner = "" }, "owner"},
		{"missing title", func(g *Goal) { g.Title = "" }, "title"},
		{"missing year", func(g *Goal) { g.TargetYear = 0 }, "target_year"},
		{"progress low", func(g *Goal) { g.Progress = -1 }, "progress"},
		{"progress high", func(g *Goal) { g.Progress = 101 }, "progress"},
		{"bad status", func(g *Goal) { g.Status = "paused" }, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := validGoal()
			tt.mutate(g)
			err := g.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestGoalSetDefaults(t *testing.T) {
	g := &Goal{ID: 1, Owner: "alice", Title: "x", TargetYear: 2026}
	g.SetDefaults()

	if g.Status != StatusActive {
		t.Errorf("default status = %q, want %q", g.Status, StatusActive)
	}
	if g.Tags == nil {
		t.Error("default tags should be an empty slice, not nil")
	}
	if g.CreatedAt == "" {
		t.Error("default created_at should be stamped")
	}
	if g.Progress != 0 {
		t.Errorf("default progress = %d, want 0", g.Progress)
	}
}

func TestPatchIsEmpty(t *testing.T) {
	if !(Patch{}).IsEmpty() {
		t.Error("zero patch should be empty")
	}
	p := 50
	if (Patch{Progress: &p}).IsEmpty() {
		t.Error("patch with progress should not be empty")
	}
}
