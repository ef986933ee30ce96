package http

import (
	"encoding/json"
	"net/http"

	"financas/internal/core"
	applog "financas/internal/log"
)

// expenseRequest carries the caller-supplied expense fields. Amount comes
// in as a decimal string so "12,34" and "12.34" both work.
type expenseRequest struct {
	Amount        string   `json:"amount"`
	Date          string   `json:"date"`
	Source        string   `json:"source"`
	PaymentMethod string   `json:"paymentMethod"`
	MemberIDs     []string `json:"memberIds"`
	ProjectID     string   `json:"projectId"`
	Notes         string   `json:"notes"`
}

func (req expenseRequest) toDraft() (core.Draft, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Draft{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Draft{}, err
	}
	return core.Draft{
		Amount:        core.Money{Cents: cents},
		Date:          date,
		Source:        sanitizeInput(req.Source),
		PaymentMethod: sanitizeInput(req.PaymentMethod),
		MemberIDs:     req.MemberIDs,
		ProjectID:     req.ProjectID,
		Notes:         sanitizeInput(req.Notes),
	}, nil
}

// handleExpenses serves the expense collection: GET lists with filters,
// POST records a new expense.
func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListExpenses(w, r)
	case http.MethodPost:
		s.handleCreateExpense(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	expenses := s.svc.Expenses(f)
	if expenses == nil {
		expenses = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"expenses": expenses,
		"count":    len(expenses),
	})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, err := req.toDraft()
	if err != nil {
		fields := applog.NewFields().
			WithError(err).
			WithOperation(applog.OpCreate)
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Rejected expense payload", fields.ToSlice()...)
		writeDomainError(w, err)
		return
	}

	e, err := s.svc.AddExpense(r.Context(), draft)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// handleExpenseByID serves a single expense: PUT updates, DELETE removes.
func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	id := pathSuffix(r, "/expenses/")
	if id == "" {
		writeError(w, http.StatusNotFound, "expense id required")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req expenseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		draft, err := req.toDraft()
		if err != nil {
			fields := applog.NewFields().
				WithError(err).
				WithOperation(applog.OpUpdate)
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Rejected expense payload", fields.ToSlice()...)
			writeDomainError(w, err)
			return
		}
		e, err := s.svc.UpdateExpense(r.Context(), id, draft)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)

	case http.MethodDelete:
		if err := s.svc.DeleteExpense(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"deleted":      id,
			"balanceCents": s.svc.Balance().Cents,
		})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
