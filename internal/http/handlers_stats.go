package http

import (
	"net/http"
	"strings"

	"financas/internal/report"
)

// handleStats returns the grouped spending totals for the active filter
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	f, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sum := s.svc.Summary(f)
	writeJSON(w, http.StatusOK, map[string]any{
		"bySource":   sum.BySource,
		"byMember":   sum.ByMember,
		"byDay":      sum.ByDay,
		"totalCents": sum.TotalCents,
		"count":      sum.Count,
	})
}

// handleReport renders a grouped report. The dimension parameter picks the
// grouping, format picks JSON structure, tabular rows or narrative text.
// format=full ignores the dimension and renders all four chapters.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	f, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	format := strings.TrimSpace(r.URL.Query().Get("format"))
	if format == "full" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(s.svc.FullStatement(f)))
		return
	}

	var dim report.Dimension
	switch strings.TrimSpace(r.URL.Query().Get("dimension")) {
	case "", "chronological":
		dim = report.Chronological
	case "member":
		dim = report.ByMember
	case "source":
		dim = report.BySource
	case "project":
		dim = report.ByProject
	default:
		writeError(w, http.StatusBadRequest, "invalid dimension")
		return
	}

	rep := s.svc.Report(f, dim)

	switch format {
	case "", "json":
		writeJSON(w, http.StatusOK, rep)
	case "tabular":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(rep.RenderTabular()))
	case "narrative":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(rep.RenderNarrative()))
	default:
		writeError(w, http.StatusBadRequest, "invalid format")
	}
}
