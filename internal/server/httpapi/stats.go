package httpapi

import (
	"net/http"
)

func (r *Router) statsFailed(w http.ResponseWriter, req *http.Request, err error) {
	r.logger.Error(req.Context(), "stats failed", "path", req.URL.Path, "error", err)
	writeFailure(w, http.StatusInternalServerError, "Server error", err)
}

func (r *Router) handleTodayIncome(w http.ResponseWriter, req *http.Request) {
	t, err := r.services.Stats.TodayIncome(req.Context(), getUserID(req.Context()))
	if err != nil {
		r.statsFailed(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"todayIncome": t.Total,
		"count":       t.Count,
		"date":        t.Label,
	})
}

func (r *Router) handleMonthlyIncome(w http.ResponseWriter, req *http.Request) {
	t, err := r.services.Stats.MonthlyIncome(req.Context(), getUserID(req.Context()))
	if err != nil {
		r.statsFailed(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"monthlyIncome": t.Total,
		"count":         t.Count,
		"month":         t.Label,
	})
}

func (r *Router) handleMonthlyNet(w http.ResponseWriter, req *http.Request) {
	n, err := r.services.Stats.MonthlyNet(req.Context(), getUserID(req.Context()))
	if err != nil {
		r.statsFailed(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"month":          n.Label,
		"monthlyIncome":  n.Income,
		"monthlyExpense": n.Expense,
		"netBalance":     n.Net,
	})
}
