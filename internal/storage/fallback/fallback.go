// Package fallback provides a storage.Store that routes calls to a primary store and
// switches to a local store for the rest of the process once the primary fails.
package fallback

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/mmynk/splitright/internal/models"
	"github.com/mmynk/splitright/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store wraps a primary and a local store. Any primary error other than
// storage.ErrNotFound flips it into fallback mode, after which every call goes to the
// local store. The switch is never undone.
type Store struct {
	primary  storage.Store
	local    storage.Store
	onSwitch func(cause error)
	fallen   atomic.Bool
}

// Option configures a Store.
type Option func(*Store)

// WithOnSwitch registers a hook that runs once, when the store enters fallback mode.
func WithOnSwitch(fn func(cause error)) Option {
	return func(s *Store) { s.onSwitch = fn }
}

// New creates a fallback store.
func New(primary, local storage.Store, opts ...Option) *Store {
	s := &Store{primary: primary, local: local}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InFallback reports whether calls are routed to the local store.
func (s *Store) InFallback() bool {
	return s.fallen.Load()
}

// do runs op on the active store and retries on the local store after a primary failure.
func do[T any](ctx context.Context, s *Store, name string, op func(storage.Store) (T, error)) (T, error) {
	if s.fallen.Load() {
		return op(s.local)
	}

	v, err := op(s.primary)
	if err == nil || errors.Is(err, storage.ErrNotFound) || ctx.Err() != nil {
		return v, err
	}

	if s.fallen.CompareAndSwap(false, true) {
		slog.Warn("Primary storage failed, switching to local store",
			"operation", name,
			"error", err,
		)
		if s.onSwitch != nil {
			s.onSwitch(err)
		}
	}
	return op(s.local)
}

func exec(ctx context.Context, s *Store, name string, op func(storage.Store) error) error {
	_, err := do(ctx, s, name, func(st storage.Store) (struct{}, error) {
		return struct{}{}, op(st)
	})
	return err
}

// CreateGroup persists a new group.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	return exec(ctx, s, "CreateGroup", func(st storage.Store) error {
		return st.CreateGroup(ctx, group)
	})
}

// GetGroup retrieves a group by its ID.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return do(ctx, s, "GetGroup", func(st storage.Store) (*models.Group, error) {
		return st.GetGroup(ctx, groupID)
	})
}

// ListGroups retrieves all groups.
func (s *Store) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return do(ctx, s, "ListGroups", func(st storage.Store) ([]*models.Group, error) {
		return st.ListGroups(ctx)
	})
}

// UpdateGroup replaces a group's name and member list.
func (s *Store) UpdateGroup(ctx context.Context, group *models.Group) error {
	return exec(ctx, s, "UpdateGroup", func(st storage.Store) error {
		return st.UpdateGroup(ctx, group)
	})
}

// DeleteGroup removes a group and its expenses.
func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	return exec(ctx, s, "DeleteGroup", func(st storage.Store) error {
		return st.DeleteGroup(ctx, groupID)
	})
}

// RenameMember renames a member and rewrites its expense references.
func (s *Store) RenameMember(ctx context.Context, groupID, oldName, newName string) error {
	return exec(ctx, s, "RenameMember", func(st storage.Store) error {
		return st.RenameMember(ctx, groupID, oldName, newName)
	})
}

// CreateExpense persists a new expense.
func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	return exec(ctx, s, "CreateExpense", func(st storage.Store) error {
		return st.CreateExpense(ctx, expense)
	})
}

// ListExpensesByGroup retrieves all expenses of a group.
func (s *Store) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	return do(ctx, s, "ListExpensesByGroup", func(st storage.Store) ([]*models.Expense, error) {
		return st.ListExpensesByGroup(ctx, groupID)
	})
}

// DeleteExpense removes an expense of a group.
func (s *Store) DeleteExpense(ctx context.Context, groupID, expenseID string) error {
	return exec(ctx, s, "DeleteExpense", func(st storage.Store) error {
		return st.DeleteExpense(ctx, groupID, expenseID)
	})
}

// Reset clears the active store.
func (s *Store) Reset(ctx context.Context) error {
	return exec(ctx, s, "Reset", func(st storage.Store) error {
		return st.Reset(ctx)
	})
}

// Close closes both stores.
func (s *Store) Close() error {
	return errors.Join(s.primary.Close(), s.local.Close())
}
