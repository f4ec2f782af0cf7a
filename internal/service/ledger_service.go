package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitright/internal/calculator"
	"github.com/mmynk/splitright/internal/metrics"
	"github.com/mmynk/splitright/internal/models"
	"github.com/mmynk/splitright/internal/storage"
)

var (
	// ErrInvalidArgument is returned (wrapped) for malformed group or member input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMemberInUse is returned when removing a member some expense still references.
	ErrMemberInUse = errors.New("member is referenced by expenses")
)

// ExpenseInput carries the fields of a new expense.
type ExpenseInput struct {
	Description  string
	Amount       decimal.Decimal
	Payer        string
	SplitBetween []string
}

// LedgerService implements group, member and expense bookkeeping on top of a Store,
// and derives balances and settlements with the calculator package.
// It is transport independent; the rpc and httpapi packages adapt it.
type LedgerService struct {
	store   storage.Store
	metrics *metrics.Metrics
}

// Option configures a LedgerService.
type Option func(*LedgerService)

// WithMetrics records settlement plans and engine failures on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *LedgerService) { s.metrics = m }
}

// NewLedgerService creates a new LedgerService with the given storage backend.
func NewLedgerService(store storage.Store, opts ...Option) *LedgerService {
	s := &LedgerService{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateGroup creates a new group.
func (s *LedgerService) CreateGroup(ctx context.Context, name string, members []string) (*models.Group, error) {
	slog.Info("CreateGroup request received",
		"name", name,
		"members_count", len(members),
	)

	group, err := normalizeGroup(name, members)
	if err != nil {
		return nil, err
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	slog.Info("Group created", "group_id", group.ID)
	return group, nil
}

// GetGroup retrieves a group by ID.
func (s *LedgerService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	slog.Info("GetGroup request received", "group_id", groupID)
	return s.store.GetGroup(ctx, groupID)
}

// ListGroups retrieves all groups.
func (s *LedgerService) ListGroups(ctx context.Context) ([]*models.Group, error) {
	slog.Info("ListGroups request received")

	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	slog.Info("ListGroups successful", "count", len(groups))
	return groups, nil
}

// UpdateGroup replaces the name and the whole member list of a group. Members dropped
// from the list must not be referenced by any expense.
func (s *LedgerService) UpdateGroup(ctx context.Context, groupID, name string, members []string) (*models.Group, error) {
	slog.Info("UpdateGroup request received",
		"group_id", groupID,
		"name", name,
		"members_count", len(members),
	)

	updated, err := normalizeGroup(name, members)
	if err != nil {
		return nil, err
	}

	current, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	for _, member := range current.Members {
		if slices.Contains(updated.Members, member) {
			continue
		}
		if err := s.ensureUnreferenced(ctx, groupID, member); err != nil {
			return nil, err
		}
	}

	current.Name = updated.Name
	current.Members = updated.Members
	if err := s.store.UpdateGroup(ctx, current); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	slog.Info("Group updated", "group_id", groupID)
	return current, nil
}

// DeleteGroup removes a group and all of its expenses.
func (s *LedgerService) DeleteGroup(ctx context.Context, groupID string) error {
	slog.Info("DeleteGroup request received", "group_id", groupID)

	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		return err
	}

	slog.Info("Group deleted", "group_id", groupID)
	return nil
}

// AddMember appends a member to a group.
func (s *LedgerService) AddMember(ctx context.Context, groupID, name string) (*models.Group, error) {
	slog.Info("AddMember request received", "group_id", groupID, "member", name)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: member name is required", ErrInvalidArgument)
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.HasMember(name) {
		return nil, fmt.Errorf("%w: member %q already exists", ErrInvalidArgument, name)
	}

	group.Members = append(group.Members, name)
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	slog.Info("Member added", "group_id", groupID, "member", name)
	return group, nil
}

// RemoveMember drops a member that no expense references.
func (s *LedgerService) RemoveMember(ctx context.Context, groupID, name string) (*models.Group, error) {
	slog.Info("RemoveMember request received", "group_id", groupID, "member", name)

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(name) {
		return nil, fmt.Errorf("member %q of group %s: %w", name, groupID, storage.ErrNotFound)
	}
	if err := s.ensureUnreferenced(ctx, groupID, name); err != nil {
		return nil, err
	}

	group.Members = slices.DeleteFunc(group.Members, func(m string) bool { return m == name })
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to remove member: %w", err)
	}

	slog.Info("Member removed", "group_id", groupID, "member", name)
	return group, nil
}

// RenameMember renames a member everywhere it appears in the group.
func (s *LedgerService) RenameMember(ctx context.Context, groupID, oldName, newName string) (*models.Group, error) {
	slog.Info("RenameMember request received",
		"group_id", groupID,
		"old_name", oldName,
		"new_name", newName,
	)

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, fmt.Errorf("%w: member name is required", ErrInvalidArgument)
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(oldName) {
		return nil, fmt.Errorf("member %q of group %s: %w", oldName, groupID, storage.ErrNotFound)
	}
	if newName == oldName {
		return group, nil
	}
	if group.HasMember(newName) {
		return nil, fmt.Errorf("%w: member %q already exists", ErrInvalidArgument, newName)
	}

	if err := s.store.RenameMember(ctx, groupID, oldName, newName); err != nil {
		return nil, fmt.Errorf("failed to rename member: %w", err)
	}

	slog.Info("Member renamed", "group_id", groupID, "new_name", newName)
	return s.store.GetGroup(ctx, groupID)
}

// CreateExpense validates an expense against the group's current members and stores it.
func (s *LedgerService) CreateExpense(ctx context.Context, groupID string, in ExpenseInput) (*models.Expense, error) {
	slog.Info("CreateExpense request received",
		"group_id", groupID,
		"amount", in.Amount.String(),
		"payer", in.Payer,
		"split_count", len(in.SplitBetween),
	)

	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidArgument)
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	candidate := calculator.ExpenseForBalance{
		Amount:       in.Amount,
		Payer:        in.Payer,
		SplitBetween: in.SplitBetween,
	}
	if _, err := calculator.ComputeBalances(group.Members, []calculator.ExpenseForBalance{candidate}); err != nil {
		s.metrics.EngineFailure(err)
		return nil, err
	}

	expense := &models.Expense{
		GroupID:      groupID,
		Description:  description,
		Amount:       in.Amount,
		Payer:        in.Payer,
		SplitBetween: slices.Clone(in.SplitBetween),
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	slog.Info("Expense created", "group_id", groupID, "expense_id", expense.ID)
	return expense, nil
}

// ListExpenses retrieves the expenses of an existing group.
func (s *LedgerService) ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	slog.Info("ListExpenses request received", "group_id", groupID)

	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	slog.Info("ListExpenses successful", "group_id", groupID, "count", len(expenses))
	return expenses, nil
}

// DeleteExpense removes an expense of a group.
func (s *LedgerService) DeleteExpense(ctx context.Context, groupID, expenseID string) error {
	slog.Info("DeleteExpense request received", "group_id", groupID, "expense_id", expenseID)

	if err := s.store.DeleteExpense(ctx, groupID, expenseID); err != nil {
		return err
	}

	slog.Info("Expense deleted", "group_id", groupID, "expense_id", expenseID)
	return nil
}

// GetBalances returns one summary per member, in member order, rounded to cents.
func (s *LedgerService) GetBalances(ctx context.Context, groupID string) ([]calculator.MemberSummary, error) {
	slog.Info("GetBalances request received", "group_id", groupID)

	group, expenses, err := s.load(ctx, groupID)
	if err != nil {
		return nil, err
	}

	summaries, err := calculator.Summarize(group.Members, expenses)
	if err != nil {
		s.metrics.EngineFailure(err)
		return nil, err
	}
	for i := range summaries {
		summaries[i].TotalPaid = calculator.RoundCurrency(summaries[i].TotalPaid)
		summaries[i].TotalShare = calculator.RoundCurrency(summaries[i].TotalShare)
		summaries[i].Net = calculator.RoundCurrency(summaries[i].Net)
	}

	slog.Info("GetBalances successful",
		"group_id", groupID,
		"expenses_count", len(expenses),
		"members_count", len(summaries),
	)
	return summaries, nil
}

// GetSettlements plans the payments that settle a group's balances.
func (s *LedgerService) GetSettlements(ctx context.Context, groupID string) ([]calculator.Settlement, error) {
	slog.Info("GetSettlements request received", "group_id", groupID)

	group, expenses, err := s.load(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances, err := calculator.ComputeBalances(group.Members, expenses)
	if err != nil {
		s.metrics.EngineFailure(err)
		return nil, err
	}
	settlements, err := calculator.PlanSettlements(balances)
	if err != nil {
		s.metrics.EngineFailure(err)
		return nil, err
	}
	s.metrics.PlanComputed()

	slog.Info("GetSettlements successful",
		"group_id", groupID,
		"expenses_count", len(expenses),
		"settlements_count", len(settlements),
	)
	return settlements, nil
}

// Reset removes every group and expense.
func (s *LedgerService) Reset(ctx context.Context) error {
	slog.Warn("Reset request received")

	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset storage: %w", err)
	}

	slog.Info("Storage reset")
	return nil
}

// load fetches a group and its expenses in calculator form.
func (s *LedgerService) load(ctx context.Context, groupID string) (*models.Group, []calculator.ExpenseForBalance, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	stored, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	expenses := make([]calculator.ExpenseForBalance, len(stored))
	for i, e := range stored {
		expenses[i] = calculator.ExpenseForBalance{
			ID:           e.ID,
			Amount:       e.Amount,
			Payer:        e.Payer,
			SplitBetween: e.SplitBetween,
		}
	}
	return group, expenses, nil
}

// ensureUnreferenced fails with ErrMemberInUse if any expense of the group mentions member.
func (s *LedgerService) ensureUnreferenced(ctx context.Context, groupID, member string) error {
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to list expenses: %w", err)
	}
	for _, e := range expenses {
		if e.References(member) {
			return fmt.Errorf("%w: %q appears in expense %s", ErrMemberInUse, member, e.ID)
		}
	}
	return nil
}

// normalizeGroup trims the name and members and rejects empty or duplicate entries.
func normalizeGroup(name string, members []string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrInvalidArgument)
	}

	cleaned := make([]string, 0, len(members))
	for _, m := range members {
		m = strings.TrimSpace(m)
		if m == "" {
			return nil, fmt.Errorf("%w: member names must not be empty", ErrInvalidArgument)
		}
		if slices.Contains(cleaned, m) {
			return nil, fmt.Errorf("%w: duplicate member %q", ErrInvalidArgument, m)
		}
		cleaned = append(cleaned, m)
	}
	return &models.Group{Name: name, Members: cleaned}, nil
}
