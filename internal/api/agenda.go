package api

import (
	"net/http"
)

// Agenda handles GET /api/agenda.
//
//	@Summary		Activities due on a day
//	@Tags			agenda
//	@Produce		json
//	@Param			date	query		string	false	"Day (yyyy-MM-dd), default today"
//	@Success		200		{object}	AgendaResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/agenda [get]
func (h *Handler) Agenda(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		writeError(w, "agenda", err)
		return
	}
	day, items := h.svc.Agenda(r.Context(), date)
	writeJSON(w, http.StatusOK, AgendaResponse{Date: day, Items: items})
}

// AgendaRange handles GET /api/agenda/range.
//
//	@Summary		Agendas for every day of a range
//	@Tags			agenda
//	@Produce		json
//	@Param			from	query		string	true	"First day (yyyy-MM-dd)"
//	@Param			to		query		string	true	"Last day (yyyy-MM-dd)"
//	@Success		200		{object}	AgendaRangeResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/agenda/range [get]
func (h *Handler) AgendaRange(w http.ResponseWriter, r *http.Request) {
	from, err := requiredDate(r, "from")
	if err != nil {
		writeError(w, "agenda range", err)
		return
	}
	to, err := requiredDate(r, "to")
	if err != nil {
		writeError(w, "agenda range", err)
		return
	}
	days, err := h.svc.AgendaRange(r.Context(), from, to)
	if err != nil {
		writeError(w, "agenda range", err)
		return
	}
	writeJSON(w, http.StatusOK, AgendaRangeResponse{Days: days})
}

// MonthlyStats handles GET /api/stats/monthly.
//
//	@Summary		Liters and production counts per month
//	@Tags			stats
//	@Produce		json
//	@Param			year	query		int	false	"Year, default current"
//	@Success		200		{object}	MonthlyStatsResponse
//	@Security		BearerAuth
//	@Router			/stats/monthly [get]
func (h *Handler) MonthlyStats(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r, h.svc.Today().Year)
	if err != nil {
		writeError(w, "monthly stats", err)
		return
	}
	writeJSON(w, http.StatusOK, MonthlyStatsResponse{Year: year, Months: h.svc.MonthlyStats(r.Context(), year)})
}

// YearlyStats handles GET /api/stats/yearly.
//
//	@Summary		Production totals for a year
//	@Tags			stats
//	@Produce		json
//	@Param			year	query		int	false	"Year, default current"
//	@Success		200		{object}	stats.YearStats
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/stats/yearly [get]
func (h *Handler) YearlyStats(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r, h.svc.Today().Year)
	if err != nil {
		writeError(w, "yearly stats", err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.YearSummary(r.Context(), year))
}

// Years handles GET /api/stats/years.
//
//	@Summary		Years that have productions
//	@Tags			stats
//	@Produce		json
//	@Success		200	{object}	map[string][]int
//	@Security		BearerAuth
//	@Router			/stats/years [get]
func (h *Handler) Years(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"years": h.svc.Years(r.Context())})
}
