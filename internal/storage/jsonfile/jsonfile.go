// Package jsonfile provides a storage.Store kept in memory and persisted as JSON files
// in a data directory. It is the local store used when no database is available.
//
// Files:
//
//	groups.json     all groups
//	expenses.json   all expenses
//	last_activity   RFC 3339 timestamp of the last write
//
// Data whose last activity is older than the configured staleness window is discarded
// when the store is opened.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitright/internal/models"
	"github.com/mmynk/splitright/internal/storage"
)

const (
	groupsFile       = "groups.json"
	expensesFile     = "expenses.json"
	lastActivityFile = "last_activity"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store implements storage.Store on top of JSON files.
type Store struct {
	mu       sync.Mutex
	dir      string
	now      func() time.Time
	groups   []*models.Group
	expenses []*models.Expense
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New opens (or initializes) the store in dir. A staleAfter of zero disables the
// staleness reset.
func New(dir string, staleAfter time.Duration, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Store{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	stale, err := s.isStale(staleAfter)
	if err != nil {
		return nil, err
	}
	if stale {
		if err := s.commit(nil, nil); err != nil {
			return nil, fmt.Errorf("failed to initialize data files: %w", err)
		}
		return s, nil
	}

	if err := s.readFile(groupsFile, &s.groups); err != nil {
		return nil, err
	}
	if err := s.readFile(expensesFile, &s.expenses); err != nil {
		return nil, err
	}
	return s, nil
}

// Close is a no-op; every mutation is flushed immediately.
func (s *Store) Close() error {
	return nil
}

// CreateGroup persists a new group.
func (s *Store) CreateGroup(_ context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = s.now().Unix()
	}
	if s.findGroup(group.ID) >= 0 {
		return fmt.Errorf("group %s already exists", group.ID)
	}

	groups := append(slices.Clip(s.groups), cloneGroup(group))
	return s.commit(groups, s.expenses)
}

// GetGroup retrieves a group by its ID.
func (s *Store) GetGroup(_ context.Context, groupID string) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findGroup(groupID)
	if i < 0 {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	return cloneGroup(s.groups[i]), nil
}

// ListGroups retrieves all groups in creation order.
func (s *Store) ListGroups(_ context.Context) ([]*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Group, len(s.groups))
	for i, g := range s.groups {
		out[i] = cloneGroup(g)
	}
	return out, nil
}

// UpdateGroup replaces a group's name and member list.
func (s *Store) UpdateGroup(_ context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findGroup(group.ID)
	if i < 0 {
		return fmt.Errorf("group %s: %w", group.ID, storage.ErrNotFound)
	}
	updated := cloneGroup(s.groups[i])
	updated.Name = group.Name
	updated.Members = slices.Clone(group.Members)

	groups := slices.Clone(s.groups)
	groups[i] = updated
	return s.commit(groups, s.expenses)
}

// DeleteGroup removes a group and its expenses.
func (s *Store) DeleteGroup(_ context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findGroup(groupID)
	if i < 0 {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	groups := slices.Delete(slices.Clone(s.groups), i, i+1)
	expenses := slices.DeleteFunc(slices.Clone(s.expenses), func(e *models.Expense) bool {
		return e.GroupID == groupID
	})
	return s.commit(groups, expenses)
}

// RenameMember renames a member and rewrites the group's expense references.
func (s *Store) RenameMember(_ context.Context, groupID, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findGroup(groupID)
	if i < 0 {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	pos := slices.Index(s.groups[i].Members, oldName)
	if pos < 0 {
		return fmt.Errorf("member %q of group %s: %w", oldName, groupID, storage.ErrNotFound)
	}
	groups := slices.Clone(s.groups)
	groups[i] = cloneGroup(s.groups[i])
	groups[i].Members[pos] = newName

	expenses := slices.Clone(s.expenses)
	for k, e := range expenses {
		if e.GroupID != groupID || !e.References(oldName) {
			continue
		}
		e = cloneExpense(e)
		if e.Payer == oldName {
			e.Payer = newName
		}
		for j, name := range e.SplitBetween {
			if name == oldName {
				e.SplitBetween[j] = newName
			}
		}
		expenses[k] = e
	}
	return s.commit(groups, expenses)
}

// CreateExpense persists a new expense.
func (s *Store) CreateExpense(_ context.Context, expense *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findGroup(expense.GroupID) < 0 {
		return fmt.Errorf("group %s: %w", expense.GroupID, storage.ErrNotFound)
	}
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = s.now().Unix()
	}

	expenses := append(slices.Clip(s.expenses), cloneExpense(expense))
	return s.commit(s.groups, expenses)
}

// ListExpensesByGroup retrieves all expenses of a group in creation order.
func (s *Store) ListExpensesByGroup(_ context.Context, groupID string) ([]*models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*models.Expense{}
	for _, e := range s.expenses {
		if e.GroupID == groupID {
			out = append(out, cloneExpense(e))
		}
	}
	return out, nil
}

// DeleteExpense removes an expense of a group.
func (s *Store) DeleteExpense(_ context.Context, groupID, expenseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.expenses, func(e *models.Expense) bool {
		return e.ID == expenseID && e.GroupID == groupID
	})
	if i < 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	expenses := slices.Delete(slices.Clone(s.expenses), i, i+1)
	return s.commit(s.groups, expenses)
}

// Reset removes all groups and expenses.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(nil, nil)
}

func (s *Store) findGroup(id string) int {
	return slices.IndexFunc(s.groups, func(g *models.Group) bool { return g.ID == id })
}

// isStale reports whether the data files are missing or older than staleAfter.
func (s *Store) isStale(staleAfter time.Duration) (bool, error) {
	if _, err := os.Stat(filepath.Join(s.dir, groupsFile)); errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if staleAfter <= 0 {
		return false, nil
	}

	raw, err := os.ReadFile(filepath.Join(s.dir, lastActivityFile))
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read last activity: %w", err)
	}
	last, err := time.Parse(time.RFC3339, strings.TrimSpace(string(raw)))
	if err != nil {
		// Unreadable stamp: treat as stale rather than trusting the data.
		return true, nil
	}
	return s.now().Sub(last) > staleAfter, nil
}

func (s *Store) readFile(name string, v any) error {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

// commit writes the next state to disk and swaps it in only once the write succeeded.
// Mutations build that state on copies so the current slices stay untouched. Caller
// holds s.mu.
func (s *Store) commit(groups []*models.Group, expenses []*models.Expense) error {
	if err := s.flush(groups, expenses); err != nil {
		return err
	}
	s.groups, s.expenses = groups, expenses
	return nil
}

// flush writes all files and stamps the last activity.
func (s *Store) flush(groups []*models.Group, expenses []*models.Expense) error {
	if groups == nil {
		groups = []*models.Group{}
	}
	if expenses == nil {
		expenses = []*models.Expense{}
	}

	if err := s.writeJSON(groupsFile, groups); err != nil {
		return err
	}
	if err := s.writeJSON(expensesFile, expenses); err != nil {
		return err
	}
	stamp := []byte(s.now().UTC().Format(time.RFC3339))
	return s.writeAtomic(lastActivityFile, stamp)
}

func (s *Store) writeJSON(name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return s.writeAtomic(name, raw)
}

// writeAtomic writes data to a temp file and renames it over name.
func (s *Store) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

func cloneGroup(g *models.Group) *models.Group {
	c := *g
	c.Members = slices.Clone(g.Members)
	if c.Members == nil {
		c.Members = []string{}
	}
	return &c
}

func cloneExpense(e *models.Expense) *models.Expense {
	c := *e
	c.SplitBetween = slices.Clone(e.SplitBetween)
	if c.SplitBetween == nil {
		c.SplitBetween = []string{}
	}
	return &c
}
