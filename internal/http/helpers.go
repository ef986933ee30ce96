package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"financas/internal/core"
	"financas/internal/stats"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps ledger errors onto HTTP statuses
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptySource),
		errors.Is(err, core.ErrEmptyName):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// pathSuffix returns the path segment after the given prefix, or "" when
// the request path is the prefix itself or has further segments.
func pathSuffix(r *http.Request, prefix string) string {
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	if rest == "" || strings.Contains(rest, "/") {
		return ""
	}
	return rest
}

// parseFilter extracts the aggregation filter from query parameters.
// Absent parameters leave their condition inactive. Supplying start/end
// without a period promotes the filter to a custom range; combining them
// with an explicit named period is rejected so a bound is never silently
// dropped.
func parseFilter(r *http.Request) (stats.Filter, error) {
	q := r.URL.Query()
	f := stats.Filter{
		Member:    strings.TrimSpace(q.Get("member")),
		Source:    strings.TrimSpace(q.Get("source")),
		ProjectID: strings.TrimSpace(q.Get("project")),
		Query:     strings.TrimSpace(q.Get("q")),
	}

	if v := strings.TrimSpace(q.Get("start")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return stats.Filter{}, errors.New("invalid start date: " + v)
		}
		f.Start = d
	}
	if v := strings.TrimSpace(q.Get("end")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return stats.Filter{}, errors.New("invalid end date: " + v)
		}
		f.End = d
	}
	hasBounds := !f.Start.IsZero() || !f.End.IsZero()

	period := strings.TrimSpace(q.Get("period"))
	switch period {
	case "":
		if hasBounds {
			f.Period = stats.PeriodCustom
		} else {
			f.Period = stats.PeriodAll
		}
	case string(stats.PeriodAll):
		f.Period = stats.PeriodAll
	case string(stats.PeriodLast7Days):
		f.Period = stats.PeriodLast7Days
	case string(stats.PeriodLast30Days):
		f.Period = stats.PeriodLast30Days
	case string(stats.PeriodCurrentYear):
		f.Period = stats.PeriodCurrentYear
	case string(stats.PeriodCustom):
		f.Period = stats.PeriodCustom
	default:
		return stats.Filter{}, errors.New("invalid period: " + period)
	}
	if hasBounds && f.Period != stats.PeriodCustom {
		return stats.Filter{}, errors.New("start/end only apply to period=custom")
	}

	return f, nil
}

// sanitizeInput removes control characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
