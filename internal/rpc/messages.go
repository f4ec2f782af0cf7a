package rpc

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitright/internal/calculator"
	"github.com/mmynk/splitright/internal/models"
)

// Request and response messages of the GroupService and ExpenseService procedures.

type CreateGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type CreateGroupResponse struct {
	Group *models.Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group *models.Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*models.Group `json:"groups"`
}

type UpdateGroupRequest struct {
	GroupID string   `json:"group_id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type UpdateGroupResponse struct {
	Group *models.Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type DeleteGroupResponse struct{}

type GetBalancesRequest struct {
	GroupID string `json:"group_id"`
}

// MemberBalance is one member's position, rounded to cents.
type MemberBalance struct {
	MemberName string          `json:"member_name"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	TotalShare decimal.Decimal `json:"total_share"`
	Net        decimal.Decimal `json:"net"`
}

type GetBalancesResponse struct {
	Balances []MemberBalance `json:"balances"`
}

type GetSettlementsRequest struct {
	GroupID string `json:"group_id"`
}

// Settlement is one suggested payment.
type Settlement struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type GetSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
}

type CreateExpenseRequest struct {
	GroupID      string          `json:"group_id"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Payer        string          `json:"payer"`
	SplitBetween []string        `json:"split_between"`
}

type CreateExpenseResponse struct {
	Expense *models.Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID string `json:"group_id"`
}

type ListExpensesResponse struct {
	Expenses []*models.Expense `json:"expenses"`
}

type DeleteExpenseRequest struct {
	GroupID   string `json:"group_id"`
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}

// GroupRef reports the group a request addresses, for request logging.
func (r *GetGroupRequest) GroupRef() string { return r.GroupID }
func (r *UpdateGroupRequest) GroupRef() string { return r.GroupID }
func (r *DeleteGroupRequest) GroupRef() string { return r.GroupID }
func (r *GetBalancesRequest) GroupRef() string { return r.GroupID }
func (r *GetSettlementsRequest) GroupRef() string { return r.GroupID }
func (r *CreateExpenseRequest) GroupRef() string { return r.GroupID }
func (r *ListExpensesRequest) GroupRef() string { return r.GroupID }
func (r *DeleteExpenseRequest) GroupRef() string { return r.GroupID }

func toMemberBalances(summaries []calculator.MemberSummary) []MemberBalance {
	out := make([]MemberBalance, len(summaries))
	for i, s := range summaries {
		out[i] = MemberBalance{
			MemberName: s.MemberName,
			TotalPaid:  s.TotalPaid,
			TotalShare: s.TotalShare,
			Net:        s.Net,
		}
	}
	return out
}

func toSettlements(settlements []calculator.Settlement) []Settlement {
	out := make([]Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = Settlement{From: s.From, To: s.To, Amount: s.Amount}
	}
	return out
}
