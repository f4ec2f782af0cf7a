package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitright/internal/models"
	"github.com/mmynk/splitright/internal/storage"
)

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := New(dir, 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	group := &models.Group{Name: "Trip", Members: []string{"Alice", "Bob"}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	expense := &models.Expense{
		GroupID:      group.ID,
		Description:  "Fuel",
		Amount:       decimal.RequireFromString("45.10"),
		Payer:        "Bob",
		SplitBetween: []string{"Alice", "Bob"},
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	reopened, err := New(dir, 0)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	g, err := reopened.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if g.Name != "Trip" || len(g.Members) != 2 {
		t.Errorf("GetGroup = %+v, want Trip with 2 members", g)
	}

	expenses, err := reopened.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListExpensesByGroup failed: %v", err)
	}
	if len(expenses) != 1 || !expenses[0].Amount.Equal(decimal.RequireFromString("45.1")) {
		t.Errorf("ListExpensesByGroup = %+v, want one expense of 45.10", expenses)
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	store, err := New(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	group := &models.Group{Name: "G", Members: []string{"A", "B"}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	group.Members[0] = "mutated"

	g, _ := store.GetGroup(ctx, group.ID)
	g.Members[1] = "mutated too"

	again, _ := store.GetGroup(ctx, group.ID)
	if again.Members[0] != "A" || again.Members[1] != "B" {
		t.Errorf("store state was aliased: %v", again.Members)
	}
}

func TestStore_StaleDataIsReset(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	window := 30 * 24 * time.Hour

	store, err := New(dir, window, WithClock(func() time.Time { return start }))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := store.CreateGroup(ctx, &models.Group{Name: "Old", Members: []string{"A"}}); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	tests := []struct {
		name      string
		openAt    time.Time
		wantCount int
	}{
		{"within window", start.Add(window - time.Hour), 1},
		{"past window", start.Add(window + time.Hour), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Copy the files so each case opens the same snapshot.
			caseDir := t.TempDir()
			for _, name := range []string{groupsFile, expensesFile, lastActivityFile} {
				raw, err := os.ReadFile(filepath.Join(dir, name))
				if err != nil {
					t.Fatalf("read %s: %v", name, err)
				}
				if err := os.WriteFile(filepath.Join(caseDir, name), raw, 0644); err != nil {
					t.Fatalf("write %s: %v", name, err)
				}
			}

			s, err := New(caseDir, window, WithClock(func() time.Time { return tt.openAt }))
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			groups, err := s.ListGroups(ctx)
			if err != nil {
				t.Fatalf("ListGroups failed: %v", err)
			}
			if len(groups) != tt.wantCount {
				t.Errorf("got %d groups, want %d", len(groups), tt.wantCount)
			}
		})
	}
}

func TestStore_DeleteGroupCascades(t *testing.T) {
	store, err := New(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	keep := &models.Group{Name: "Keep", Members: []string{"A"}}
	drop := &models.Group{Name: "Drop", Members: []string{"A"}}
	for _, g := range []*models.Group{keep, drop} {
		if err := store.CreateGroup(ctx, g); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		e := &models.Expense{GroupID: g.ID, Description: "x", Amount: decimal.NewFromInt(1), Payer: "A", SplitBetween: []string{"A"}}
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
	}

	if err := store.DeleteGroup(ctx, drop.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	if err := store.DeleteGroup(ctx, drop.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second DeleteGroup: expected ErrNotFound, got %v", err)
	}

	dropped, _ := store.ListExpensesByGroup(ctx, drop.ID)
	kept, _ := store.ListExpensesByGroup(ctx, keep.ID)
	if len(dropped) != 0 || len(kept) != 1 {
		t.Errorf("after delete: dropped=%d kept=%d, want 0 and 1", len(dropped), len(kept))
	}
}

func TestStore_RenameMember(t *testing.T) {
	store, err := New(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	group := &models.Group{Name: "G", Members: []string{"Al", "Bea"}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	e := &models.Expense{GroupID: group.ID, Description: "x", Amount: decimal.NewFromInt(8), Payer: "Al", SplitBetween: []string{"Al", "Bea"}}
	if err := store.CreateExpense(ctx, e); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	if err := store.RenameMember(ctx, group.ID, "Al", "Alan"); err != nil {
		t.Fatalf("RenameMember failed: %v", err)
	}
	expenses, _ := store.ListExpensesByGroup(ctx, group.ID)
	if expenses[0].Payer != "Alan" || expenses[0].SplitBetween[0] != "Alan" {
		t.Errorf("expense not rewritten: %+v", expenses[0])
	}
	if err := store.RenameMember(ctx, group.ID, "Al", "X"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for old name, got %v", err)
	}
}

func TestStore_CreateExpenseUnknownGroup(t *testing.T) {
	store, err := New(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	err = store.CreateExpense(context.Background(), &models.Expense{GroupID: "missing"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_FailedWriteKeepsState(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	ctx := context.Background()

	store, err := New(dir, 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	group := &models.Group{Name: "Trip", Members: []string{"Alice", "Bob"}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	expense := &models.Expense{
		GroupID:      group.ID,
		Description:  "Fuel",
		Amount:       decimal.NewFromInt(20),
		Payer:        "Alice",
		SplitBetween: []string{"Alice", "Bob"},
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	// Every write now fails: temp files cannot be created in a missing directory.
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}

	mutations := map[string]func() error{
		"UpdateGroup": func() error {
			return store.UpdateGroup(ctx, &models.Group{ID: group.ID, Name: "Renamed", Members: []string{"Alice"}})
		},
		"RenameMember":  func() error { return store.RenameMember(ctx, group.ID, "Alice", "Alicia") },
		"DeleteGroup":   func() error { return store.DeleteGroup(ctx, group.ID) },
		"DeleteExpense": func() error { return store.DeleteExpense(ctx, group.ID, expense.ID) },
		"Reset":         func() error { return store.Reset(ctx) },
		"CreateGroup":   func() error { return store.CreateGroup(ctx, &models.Group{Name: "Other"}) },
		"CreateExpense": func() error {
			return store.CreateExpense(ctx, &models.Expense{GroupID: group.ID, Amount: decimal.NewFromInt(1), Payer: "Bob", SplitBetween: []string{"Bob"}})
		},
	}
	for name, mutate := range mutations {
		if err := mutate(); err == nil {
			t.Fatalf("%s succeeded without a data directory", name)
		}
	}

	groups, err := store.ListGroups(ctx)
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	got := groups[0]
	if got.Name != "Trip" || len(got.Members) != 2 || got.Members[0] != "Alice" {
		t.Errorf("group changed by failed writes: %+v", got)
	}

	expenses, err := store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListExpensesByGroup failed: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(expenses))
	}
	if expenses[0].Payer != "Alice" || expenses[0].SplitBetween[0] != "Alice" {
		t.Errorf("expense changed by failed writes: %+v", expenses[0])
	}
}
