package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitright/internal/calculator"
	"github.com/mmynk/splitright/internal/middleware"
	"github.com/mmynk/splitright/internal/service"
	"github.com/mmynk/splitright/internal/storage"
	"github.com/mmynk/splitright/internal/storage/sqlite"
)

// setupTestServer serves both Connect services from a temp SQLite database.
func setupTestServer(t *testing.T) (*GroupServiceClient, *ExpenseServiceClient) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	svc := service.NewLedgerService(store)
	interceptors := connect.WithInterceptors(middleware.LoggingInterceptor(nil))

	mux := http.NewServeMux()
	groupPath, groupHandler := NewGroupServiceHandler(NewGroupServer(svc), interceptors)
	expensePath, expenseHandler := NewExpenseServiceHandler(NewExpenseServer(svc), interceptors)
	mux.Handle(groupPath, groupHandler)
	mux.Handle(expensePath, expenseHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return NewGroupServiceClient(http.DefaultClient, server.URL),
		NewExpenseServiceClient(http.DefaultClient, server.URL)
}

func TestGroupLifecycle(t *testing.T) {
	groups, _ := setupTestServer(t)
	ctx := context.Background()

	created, err := groups.CreateGroup(ctx, connect.NewRequest(&CreateGroupRequest{
		Name:    "Roommates",
		Members: []string{"Alice", "Bob", "Charlie"},
	}))
	require.NoError(t, err)
	require.NotNil(t, created.Msg.Group)
	groupID := created.Msg.Group.ID
	assert.NotEmpty(t, groupID)

	got, err := groups.GetGroup(ctx, connect.NewRequest(&GetGroupRequest{GroupID: groupID}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob", "Charlie"}, got.Msg.Group.Members)

	updated, err := groups.UpdateGroup(ctx, connect.NewRequest(&UpdateGroupRequest{
		GroupID: groupID,
		Name:    "Flatmates",
		Members: []string{"Alice", "Bob"},
	}))
	require.NoError(t, err)
	assert.Equal(t, "Flatmates", updated.Msg.Group.Name)

	list, err := groups.ListGroups(ctx, connect.NewRequest(&ListGroupsRequest{}))
	require.NoError(t, err)
	assert.Len(t, list.Msg.Groups, 1)

	_, err = groups.DeleteGroup(ctx, connect.NewRequest(&DeleteGroupRequest{GroupID: groupID}))
	require.NoError(t, err)

	_, err = groups.GetGroup(ctx, connect.NewRequest(&GetGroupRequest{GroupID: groupID}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestExpensesAndSettlements(t *testing.T) {
	groups, expenses := setupTestServer(t)
	ctx := context.Background()

	created, err := groups.CreateGroup(ctx, connect.NewRequest(&CreateGroupRequest{
		Name:    "Trip",
		Members: []string{"Alice", "Bob", "Charlie"},
	}))
	require.NoError(t, err)
	groupID := created.Msg.Group.ID

	_, err = expenses.CreateExpense(ctx, connect.NewRequest(&CreateExpenseRequest{
		GroupID:      groupID,
		Description:  "Dinner",
		Amount:       decimal.NewFromInt(10),
		Payer:        "Alice",
		SplitBetween: []string{"Alice", "Bob", "Charlie"},
	}))
	require.NoError(t, err)

	list, err := expenses.ListExpenses(ctx, connect.NewRequest(&ListExpensesRequest{GroupID: groupID}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Expenses, 1)
	assert.Equal(t, "Dinner", list.Msg.Expenses[0].Description)

	balances, err := groups.GetBalances(ctx, connect.NewRequest(&GetBalancesRequest{GroupID: groupID}))
	require.NoError(t, err)
	require.Len(t, balances.Msg.Balances, 3)
	assert.Equal(t, "6.67", balances.Msg.Balances[0].Net.StringFixed(2))
	assert.Equal(t, "-3.33", balances.Msg.Balances[1].Net.StringFixed(2))

	settlements, err := groups.GetSettlements(ctx, connect.NewRequest(&GetSettlementsRequest{GroupID: groupID}))
	require.NoError(t, err)
	got := make([]string, len(settlements.Msg.Settlements))
	for i, s := range settlements.Msg.Settlements {
		got[i] = fmt.Sprintf("%s->%s:%s", s.From, s.To, s.Amount.StringFixed(2))
	}
	assert.Equal(t, []string{"Bob->Alice:3.33", "Charlie->Alice:3.33"}, got)

	_, err = expenses.DeleteExpense(ctx, connect.NewRequest(&DeleteExpenseRequest{
		GroupID:   groupID,
		ExpenseID: list.Msg.Expenses[0].ID,
	}))
	require.NoError(t, err)
}

func TestErrorCodes(t *testing.T) {
	groups, expenses := setupTestServer(t)
	ctx := context.Background()

	created, err := groups.CreateGroup(ctx, connect.NewRequest(&CreateGroupRequest{
		Name:    "G",
		Members: []string{"Alice", "Bob"},
	}))
	require.NoError(t, err)
	groupID := created.Msg.Group.ID

	_, err = expenses.CreateExpense(ctx, connect.NewRequest(&CreateExpenseRequest{
		GroupID:      groupID,
		Description:  "Taxi",
		Amount:       decimal.NewFromInt(20),
		Payer:        "Alice",
		SplitBetween: []string{"Alice", "Bob"},
	}))
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		want connect.Code
	}{
		{"missing group_id", func() error {
			_, err := groups.GetBalances(ctx, connect.NewRequest(&GetBalancesRequest{}))
			return err
		}, connect.CodeInvalidArgument},
		{"empty group name", func() error {
			_, err := groups.CreateGroup(ctx, connect.NewRequest(&CreateGroupRequest{Name: " "}))
			return err
		}, connect.CodeInvalidArgument},
		{"payer not a member", func() error {
			_, err := expenses.CreateExpense(ctx, connect.NewRequest(&CreateExpenseRequest{
				GroupID: groupID, Description: "x", Amount: decimal.NewFromInt(1),
				Payer: "Zed", SplitBetween: []string{"Alice"},
			}))
			return err
		}, connect.CodeInvalidArgument},
		{"unknown group", func() error {
			_, err := groups.GetSettlements(ctx, connect.NewRequest(&GetSettlementsRequest{GroupID: "missing"}))
			return err
		}, connect.CodeNotFound},
		{"dropping a referenced member", func() error {
			_, err := groups.UpdateGroup(ctx, connect.NewRequest(&UpdateGroupRequest{
				GroupID: groupID, Name: "G", Members: []string{"Alice"},
			}))
			return err
		}, connect.CodeFailedPrecondition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, tt.want, connect.CodeOf(err))
		})
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want connect.Code
	}{
		{fmt.Errorf("group x: %w", storage.ErrNotFound), connect.CodeNotFound},
		{&calculator.ValidationError{Index: 0, Reason: "bad"}, connect.CodeInvalidArgument},
		{fmt.Errorf("%w: name", service.ErrInvalidArgument), connect.CodeInvalidArgument},
		{fmt.Errorf("%w: Bob", service.ErrMemberInUse), connect.CodeFailedPrecondition},
		{&calculator.InconsistencyError{Op: "plan"}, connect.CodeInternal},
		{errors.New("disk full"), connect.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestCodec_RejectsUnknownFields(t *testing.T) {
	var req CreateGroupRequest
	err := jsonCodec{}.Unmarshal([]byte(`{"name":"x","colour":"red"}`), &req)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "colour"))

	require.NoError(t, jsonCodec{}.Unmarshal(nil, &req))
}
