package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"financas/internal/core"
	"financas/internal/ledger"
)

type memberRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
}

type categoryRequest struct {
	Label string `json:"label"`
	Field string `json:"field"`
}

func parseCategoryField(v string) (ledger.CategoryField, bool) {
	switch v {
	case "", "source":
		return ledger.FieldSource, true
	case "payment_method":
		return ledger.FieldPaymentMethod, true
	default:
		return "", false
	}
}

// handleMembers serves the member collection
func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		members := s.svc.Members()
		if members == nil {
			members = []core.Member{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"members": members})

	case http.MethodPost:
		var req memberRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		m, err := s.svc.AddMember(r.Context(), sanitizeInput(req.Name), sanitizeInput(req.Role))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleMemberByID serves a single member: PUT renames, DELETE removes.
// Removing a member never touches their expenses; those ids dangle and
// aggregation reports them under the fallback bucket.
func (s *Server) handleMemberByID(w http.ResponseWriter, r *http.Request) {
	id := pathSuffix(r, "/members/")
	if id == "" {
		writeError(w, http.StatusNotFound, "member id required")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req memberRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		m, err := s.svc.UpdateMember(r.Context(), id, sanitizeInput(req.Name), sanitizeInput(req.Role))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)

	case http.MethodDelete:
		if err := s.svc.RemoveMember(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": id})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleProjects serves the project collection
func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		projects := s.svc.Projects()
		if projects == nil {
			projects = []core.Project{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"projects": projects})

	case http.MethodPost:
		var req projectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		p, err := s.svc.AddProject(r.Context(), sanitizeInput(req.Name), sanitizeInput(req.Description), sanitizeInput(req.Notes))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleProjectByID deletes a project. The purge parameter picks the
// policy: purge=true removes the project's expenses and refunds them,
// otherwise the expenses stay and lose their project reference.
func (s *Server) handleProjectByID(w http.ResponseWriter, r *http.Request) {
	id := pathSuffix(r, "/projects/")
	if id == "" {
		writeError(w, http.StatusNotFound, "project id required")
		return
	}

	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	policy := ledger.DetachExpenses
	if r.URL.Query().Get("purge") == "true" {
		policy = ledger.PurgeExpenses
	}

	if err := s.svc.DeleteProject(r.Context(), id, policy); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deleted":      id,
		"purged":       policy == ledger.PurgeExpenses,
		"balanceCents": s.svc.Balance().Cents,
	})
}

// handleCategories serves the source and payment method catalogs
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sources, paymentMethods := s.svc.Categories()
		if sources == nil {
			sources = []string{}
		}
		if paymentMethods == nil {
			paymentMethods = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"sources":        sources,
			"paymentMethods": paymentMethods,
		})

	case http.MethodPost:
		var req categoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		field, ok := parseCategoryField(req.Field)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid field")
			return
		}
		if err := s.svc.AddCategory(r.Context(), sanitizeInput(req.Label), field); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"label": sanitizeInput(req.Label)})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleCategoryByLabel deletes a category label. The policy parameter
// picks what happens to expenses carrying it: "reassign" rewrites them to
// the sentinel label, the default keeps them untouched.
func (s *Server) handleCategoryByLabel(w http.ResponseWriter, r *http.Request) {
	label := pathSuffix(r, "/categories/")
	if label == "" {
		writeError(w, http.StatusNotFound, "category label required")
		return
	}
	if decoded, err := url.PathUnescape(label); err == nil {
		label = decoded
	}

	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	field, ok := parseCategoryField(r.URL.Query().Get("field"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid field")
		return
	}

	policy := ledger.KeepExpenses
	if strings.EqualFold(r.URL.Query().Get("policy"), "reassign") {
		policy = ledger.ReassignExpenses
	}

	if err := s.svc.DeleteCategory(r.Context(), label, field, policy); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deleted":    label,
		"reassigned": policy == ledger.ReassignExpenses,
	})
}
