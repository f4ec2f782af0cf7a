package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitright/internal/calculator"
	"github.com/mmynk/splitright/internal/service"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// GroupRequest is the body of POST /api/groups and PUT /api/groups/{id}.
type GroupRequest struct {
	Name    string   `json:"name"    validate:"required"`
	Members []string `json:"members" validate:"dive,required"`
}

// MemberRequest is the body of the member endpoints.
type MemberRequest struct {
	Name string `json:"name" validate:"required"`
}

// ExpenseRequest is the body of POST /api/groups/{id}/expenses.
type ExpenseRequest struct {
	Description  string          `json:"description"   validate:"required"`
	Amount       decimal.Decimal `json:"amount"`
	Payer        string          `json:"payer"         validate:"required"`
	SplitBetween []string        `json:"split_between" validate:"required,min=1,dive,required"`
}

func (r ExpenseRequest) toInput() service.ExpenseInput {
	return service.ExpenseInput{
		Description:  r.Description,
		Amount:       r.Amount,
		Payer:        r.Payer,
		SplitBetween: r.SplitBetween,
	}
}

// BalanceResponse is one entry of GET /api/groups/{id}/balances.
type BalanceResponse struct {
	Member     string          `json:"member"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	TotalShare decimal.Decimal `json:"total_share"`
	Balance    decimal.Decimal `json:"balance"`
}

// SettlementResponse is one entry of GET /api/groups/{id}/settlements.
type SettlementResponse struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ResetResponse is the body of POST /api/reset.
type ResetResponse struct {
	Message string `json:"message"`
}

// decodeAndValidate reads a JSON body into v and checks its validate tags.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", service.ErrInvalidArgument, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

func toBalanceResponses(summaries []calculator.MemberSummary) []BalanceResponse {
	out := make([]BalanceResponse, len(summaries))
	for i, s := range summaries {
		out[i] = BalanceResponse{
			Member:     s.MemberName,
			TotalPaid:  s.TotalPaid,
			TotalShare: s.TotalShare,
			Balance:    s.Net,
		}
	}
	return out
}

func toSettlementResponses(settlements []calculator.Settlement) []SettlementResponse {
	out := make([]SettlementResponse, len(settlements))
	for i, s := range settlements {
		out[i] = SettlementResponse{From: s.From, To: s.To, Amount: s.Amount}
	}
	return out
}
