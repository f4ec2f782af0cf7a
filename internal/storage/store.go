// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitright/internal/models"
)

// ErrNotFound is returned (wrapped) when a group or expense does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for group and expense storage operations.
// This abstraction allows swapping storage backends (SQLite, JSON files, etc.)
// without changing the service layer.
//
// Stores only persist; membership rules are enforced by the service layer.
type Store interface {
	// CreateGroup persists a new group.
	// The group.ID and group.CreatedAt fields are populated by the store when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by its ID.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups retrieves all groups, oldest first.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// UpdateGroup replaces the name and the whole member list of an existing group.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group and all of its expenses.
	DeleteGroup(ctx context.Context, groupID string) error

	// RenameMember renames a member of a group and rewrites every expense reference to
	// the old name in one step.
	RenameMember(ctx context.Context, groupID, oldName, newName string) error

	// CreateExpense persists a new expense.
	// The expense.ID and expense.CreatedAt fields are populated by the store when empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// ListExpensesByGroup retrieves all expenses of a group, oldest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// DeleteExpense removes an expense of a group.
	DeleteExpense(ctx context.Context, groupID, expenseID string) error

	// Reset removes all groups and expenses.
	Reset(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
