package rpc

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitright/internal/service"
)

// ExpenseServer adapts LedgerService to the ExpenseService procedures.
type ExpenseServer struct {
	svc *service.LedgerService
}

// NewExpenseServer creates an ExpenseServer.
func NewExpenseServer(svc *service.LedgerService) *ExpenseServer {
	return &ExpenseServer{svc: svc}
}

// NewExpenseServiceHandler builds an HTTP handler for every ExpenseService procedure
// and returns the path prefix to mount it on.
func NewExpenseServiceHandler(s *ExpenseServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{codecOption()}, opts...)

	mux := http.NewServeMux()
	mux.Handle(ExpenseServiceCreateExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, s.CreateExpense, opts...))
	mux.Handle(ExpenseServiceListExpensesProcedure, connect.NewUnaryHandler(ExpenseServiceListExpensesProcedure, s.ListExpenses, opts...))
	mux.Handle(ExpenseServiceDeleteExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, s.DeleteExpense, opts...))
	return "/" + ExpenseServiceName + "/", mux
}

// CreateExpense records a new expense.
func (s *ExpenseServer) CreateExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error) {
	if err := requireGroupID(req.Msg.GroupID); err != nil {
		return nil, err
	}
	expense, err := s.svc.CreateExpense(ctx, req.Msg.GroupID, service.ExpenseInput{
		Description:  req.Msg.Description,
		Amount:       req.Msg.Amount,
		Payer:        req.Msg.Payer,
		SplitBetween: req.Msg.SplitBetween,
	})
	if err != nil {
		return nil, toConnectError("CreateExpense", err)
	}
	return connect.NewResponse(&CreateExpenseResponse{Expense: expense}), nil
}

// ListExpenses returns a group's expenses, oldest first.
func (s *ExpenseServer) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	if err := requireGroupID(req.Msg.GroupID); err != nil {
		return nil, err
	}
	expenses, err := s.svc.ListExpenses(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("ListExpenses", err)
	}
	return connect.NewResponse(&ListExpensesResponse{Expenses: expenses}), nil
}

// DeleteExpense removes an expense.
func (s *ExpenseServer) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	if err := requireGroupID(req.Msg.GroupID); err != nil {
		return nil, err
	}
	if req.Msg.ExpenseID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("expense_id required"))
	}
	if err := s.svc.DeleteExpense(ctx, req.Msg.GroupID, req.Msg.ExpenseID); err != nil {
		return nil, toConnectError("DeleteExpense", err)
	}
	return connect.NewResponse(&DeleteExpenseResponse{}), nil
}
