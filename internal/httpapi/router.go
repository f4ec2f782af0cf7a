// Package httpapi serves the ledger as the JSON REST API under /api.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/splitright/internal/auth"
	"github.com/mmynk/splitright/internal/metrics"
	"github.com/mmynk/splitright/internal/middleware"
	"github.com/mmynk/splitright/internal/service"
)

var errResetDisabled = errors.New("reset is disabled on this server")

// Options configures the router.
type Options struct {
	// Admin guards POST /api/reset. A nil manager disables the endpoint.
	Admin *auth.JWTManager
	// Metrics receives per-route request metrics. May be nil.
	Metrics *metrics.Metrics
}

// Handler handles the REST endpoints.
type Handler struct {
	svc      *service.LedgerService
	validate *validator.Validate
}

// NewRouter builds the /api routes.
func NewRouter(svc *service.LedgerService, opts Options) http.Handler {
	h := &Handler{svc: svc, validate: validator.New()}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics(opts.Metrics))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			if opts.Admin != nil {
				r.Use(middleware.RequireAdmin(opts.Admin))
				r.Post("/reset", h.Reset)
			} else {
				r.Post("/reset", func(w http.ResponseWriter, r *http.Request) {
					respondError(w, http.StatusForbidden, errResetDisabled.Error())
				})
			}
		})

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", h.ListGroups)
			r.Post("/", h.CreateGroup)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetGroup)
				r.Put("/", h.UpdateGroup)
				r.Delete("/", h.DeleteGroup)

				r.Post("/members", h.AddMember)
				r.Put("/members/{name}", h.RenameMember)
				r.Delete("/members/{name}", h.RemoveMember)

				r.Get("/expenses", h.ListExpenses)
				r.Post("/expenses", h.CreateExpense)
				r.Delete("/expenses/{eid}", h.DeleteExpense)

				r.Get("/balances", h.GetBalances)
				r.Get("/settlements", h.GetSettlements)
			})
		})
	})

	return r
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

// Reset handles POST /api/reset.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	slog.Warn("Reset requested", "admin", middleware.GetAdminSubject(r.Context()))
	if err := h.svc.Reset(r.Context()); err != nil {
		respondServiceError(w, r, "Reset", err)
		return
	}
	respondJSON(w, http.StatusOK, ResetResponse{Message: "all data has been reset"})
}

// ListGroups handles GET /api/groups.
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.ListGroups(r.Context())
	if err != nil {
		respondServiceError(w, r, "ListGroups", err)
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

// CreateGroup handles POST /api/groups.
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req GroupRequest
	if err := decodeAndValidate(w, r, h.validate, &req); err != nil {
		respondServiceError(w, r, "CreateGroup", err)
		return
	}
	group, err := h.svc.CreateGroup(r.Context(), req.Name, req.Members)
	if err != nil {
		respondServiceError(w, r, "CreateGroup", err)
		return
	}
	respondJSON(w, http.StatusCreated, group)
}

// GetGroup handles GET /api/groups/{id}.
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.svc.GetGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, "GetGroup", err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

// UpdateGroup handles PUT /api/groups/{id}.
func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req GroupRequest
	if err := decodeAndValidate(w, r, h.validate, &req); err != nil {
		respondServiceError(w, r, "UpdateGroup", err)
		return
	}
	group, err := h.svc.UpdateGroup(r.Context(), chi.URLParam(r, "id"), req.Name, req.Members)
	if err != nil {
		respondServiceError(w, r, "UpdateGroup", err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

// DeleteGroup handles DELETE /api/groups/{id}.
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteGroup(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, "DeleteGroup", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddMember handles POST /api/groups/{id}/members.
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req MemberRequest
	if err := decodeAndValidate(w, r, h.validate, &req); err != nil {
		respondServiceError(w, r, "AddMember", err)
		return
	}
	group, err := h.svc.AddMember(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		respondServiceError(w, r, "AddMember", err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

// RenameMember handles PUT /api/groups/{id}/members/{name}.
func (h *Handler) RenameMember(w http.ResponseWriter, r *http.Request) {
	var req MemberRequest
	if err := decodeAndValidate(w, r, h.validate, &req); err != nil {
		respondServiceError(w, r, "RenameMember", err)
		return
	}
	group, err := h.svc.RenameMember(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "name"), req.Name)
	if err != nil {
		respondServiceError(w, r, "RenameMember", err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

// RemoveMember handles DELETE /api/groups/{id}/members/{name}.
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	group, err := h.svc.RemoveMember(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "name"))
	if err != nil {
		respondServiceError(w, r, "RemoveMember", err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

// ListExpenses handles GET /api/groups/{id}/expenses.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.svc.ListExpenses(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, "ListExpenses", err)
		return
	}
	respondJSON(w, http.StatusOK, expenses)
}

// CreateExpense handles POST /api/groups/{id}/expenses.
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req ExpenseRequest
	if err := decodeAndValidate(w, r, h.validate, &req); err != nil {
		respondServiceError(w, r, "CreateExpense", err)
		return
	}
	expense, err := h.svc.CreateExpense(r.Context(), chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		respondServiceError(w, r, "CreateExpense", err)
		return
	}
	respondJSON(w, http.StatusCreated, expense)
}

// DeleteExpense handles DELETE /api/groups/{id}/expenses/{eid}.
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteExpense(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "eid")); err != nil {
		respondServiceError(w, r, "DeleteExpense", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBalances handles GET /api/groups/{id}/balances.
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.GetBalances(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, "GetBalances", err)
		return
	}
	respondJSON(w, http.StatusOK, toBalanceResponses(summaries))
}

// GetSettlements handles GET /api/groups/{id}/settlements.
func (h *Handler) GetSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := h.svc.GetSettlements(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, "GetSettlements", err)
		return
	}
	respondJSON(w, http.StatusOK, toSettlementResponses(settlements))
}
