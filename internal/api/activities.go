package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/caseificio/internal/models"
	"github.com/starford/caseificio/internal/service"
)

// ListActivities handles GET /api/activities.
//
//	@Summary		List activities
//	@Tags			activities
//	@Produce		json
//	@Param			type			query	string	false	"protocol, recurring or one-time"
//	@Param			production_id	query	string	false	"Only activities of this production"
//	@Param			cheese_type_id	query	string	false	"Only activities of this cheese type"
//	@Success		200				{array}	models.Activity
//	@Security		BearerAuth
//	@Router			/activities [get]
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, map[string]any{
		"activities": h.svc.ListActivities(r.Context(), service.ActivityFilter{
			Type:         models.ActivityType(q.Get("type")),
			ProductionID: q.Get("production_id"),
			CheeseTypeID: q.Get("cheese_type_id"),
		}),
	})
}

// GetActivity handles GET /api/activities/{id}.
//
//	@Summary		Get an activity
//	@Tags			activities
//	@Produce		json
//	@Param			id	path		string	true	"Activity id"
//	@Success		200	{object}	models.Activity
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/activities/{id} [get]
func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.GetActivity(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get activity", err)
		return
	}
	setETag(w, a)
	writeJSON(w, http.StatusOK, a)
}

// CreateActivity handles POST /api/activities.
//
//	@Summary		Create a one-time or recurring activity
//	@Tags			activities
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ActivityRequest	true	"Activity"
//	@Success		201		{object}	models.Activity
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/activities [post]
func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var req ActivityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	a, err := h.svc.CreateActivity(r.Context(), req.model(""))
	if err != nil {
		writeError(w, "create activity", err)
		return
	}
	setETag(w, a)
	writeJSON(w, http.StatusCreated, a)
}

// UpdateActivity handles PUT /api/activities/{id}.
//
//	@Summary		Replace an activity
//	@Tags			activities
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string			true	"Activity id"
//	@Param			If-Match	header		string			false	"ETag for optimistic concurrency"
//	@Param			body		body		ActivityRequest	true	"Activity"
//	@Success		200			{object}	models.Activity
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/activities/{id} [put]
func (h *Handler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	var req ActivityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	a, err := h.svc.UpdateActivity(r.Context(), req.model(chi.URLParam(r, "id")), ifMatch(r))
	if err != nil {
		writeError(w, "update activity", err)
		return
	}
	setETag(w, a)
	writeJSON(w, http.StatusOK, a)
}

// DeleteActivity handles DELETE /api/activities/{id}.
//
//	@Summary		Delete an activity
//	@Tags			activities
//	@Param			id	path	string	true	"Activity id"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/activities/{id} [delete]
func (h *Handler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteActivity(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete activity", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleCompletion handles POST /api/activities/{id}/toggle.
//
//	@Summary		Flip completion of an activity on a date
//	@Tags			activities
//	@Produce		json
//	@Param			id		path		string	true	"Activity id"
//	@Param			date	query		string	false	"Occurrence date (yyyy-MM-dd), default today"
//	@Success		200		{object}	models.Activity
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/activities/{id}/toggle [post]
func (h *Handler) ToggleCompletion(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		writeError(w, "toggle completion", err)
		return
	}
	a, err := h.svc.ToggleCompletion(r.Context(), chi.URLParam(r, "id"), date)
	if err != nil {
		writeError(w, "toggle completion", err)
		return
	}
	setETag(w, a)
	writeJSON(w, http.StatusOK, a)
}

// Occurrences handles GET /api/activities/{id}/occurrences.
//
//	@Summary		Dates on which an activity is due
//	@Tags			activities
//	@Produce		json
//	@Param			id		path		string	true	"Activity id"
//	@Param			from	query		string	true	"First day (yyyy-MM-dd)"
//	@Param			to		query		string	true	"Last day (yyyy-MM-dd)"
//	@Success		200		{object}	OccurrencesResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/activities/{id}/occurrences [get]
func (h *Handler) Occurrences(w http.ResponseWriter, r *http.Request) {
	from, err := requiredDate(r, "from")
	if err != nil {
		writeError(w, "occurrences", err)
		return
	}
	to, err := requiredDate(r, "to")
	if err != nil {
		writeError(w, "occurrences", err)
		return
	}
	id := chi.URLParam(r, "id")
	dates, err := h.svc.Occurrences(r.Context(), id, from, to)
	if err != nil {
		writeError(w, "occurrences", err)
		return
	}
	writeJSON(w, http.StatusOK, OccurrencesResponse{ActivityID: id, Dates: dates})
}
