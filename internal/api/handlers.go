package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/caseificio/internal/service"
)

// Handler holds API route handlers.
type Handler struct {
	svc *service.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// ListCheeseTypes handles GET /api/cheese-types.
//
//	@Summary		List cheese types
//	@Tags			cheese-types
//	@Produce		json
//	@Success		200	{array}	models.CheeseType
//	@Security		BearerAuth
//	@Router			/cheese-types [get]
func (h *Handler) ListCheeseTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"cheese_types": h.svc.ListCheeseTypes(r.Context()),
	})
}

// GetCheeseType handles GET /api/cheese-types/{id}.
//
//	@Summary		Get a cheese type
//	@Tags			cheese-types
//	@Produce		json
//	@Param			id	path		string	true	"Cheese type id"
//	@Success		200	{object}	models.CheeseType
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cheese-types/{id} [get]
func (h *Handler) GetCheeseType(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetCheeseType(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get cheese type", err)
		return
	}
	setETag(w, c)
	writeJSON(w, http.StatusOK, c)
}

// CreateCheeseType handles POST /api/cheese-types.
//
//	@Summary		Create a cheese type
//	@Tags			cheese-types
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CheeseTypeRequest	true	"Cheese type"
//	@Success		201		{object}	models.CheeseType
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cheese-types [post]
func (h *Handler) CreateCheeseType(w http.ResponseWriter, r *http.Request) {
	var req CheeseTypeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := h.svc.CreateCheeseType(r.Context(), req.model(""))
	if err != nil {
		writeError(w, "create cheese type", err)
		return
	}
	setETag(w, c)
	writeJSON(w, http.StatusCreated, c)
}

// UpdateCheeseType handles PUT /api/cheese-types/{id}. When the protocol
// changed, the protocol activities of every production using the cheese type
// are regenerated.
//
//	@Summary		Replace a cheese type, regenerating protocol activities on protocol change
//	@Tags			cheese-types
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string				true	"Cheese type id"
//	@Param			If-Match	header		string				false	"ETag for optimistic concurrency"
//	@Param			body		body		CheeseTypeRequest	true	"Cheese type"
//	@Success		200			{object}	CheeseTypeResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cheese-types/{id} [put]
func (h *Handler) UpdateCheeseType(w http.ResponseWriter, r *http.Request) {
	var req CheeseTypeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, rep, err := h.svc.UpdateCheeseType(r.Context(), req.model(chi.URLParam(r, "id")), ifMatch(r))
	if err != nil {
		writeError(w, "update cheese type", err)
		return
	}
	setETag(w, c)
	writeJSON(w, http.StatusOK, CheeseTypeResponse{CheeseType: c, Report: rep})
}

// DeleteCheeseType handles DELETE /api/cheese-types/{id}.
//
//	@Summary		Delete a cheese type and every activity referencing it
//	@Tags			cheese-types
//	@Produce		json
//	@Param			id	path		string	true	"Cheese type id"
//	@Success		200	{object}	ReportResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cheese-types/{id} [delete]
func (h *Handler) DeleteCheeseType(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.DeleteCheeseType(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "delete cheese type", err)
		return
	}
	writeJSON(w, http.StatusOK, ReportResponse{Report: rep})
}

// ListProductions handles GET /api/productions.
//
//	@Summary		List productions, newest first
//	@Tags			productions
//	@Produce		json
//	@Param			year	query	int	false	"Only this year"
//	@Success		200		{array}	models.Production
//	@Security		BearerAuth
//	@Router			/productions [get]
func (h *Handler) ListProductions(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r, 0)
	if err != nil {
		writeError(w, "list productions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"productions": h.svc.ListProductions(r.Context(), year),
	})
}

// GetProduction handles GET /api/productions/{id}.
//
//	@Summary		Get a production
//	@Tags			productions
//	@Produce		json
//	@Param			id	path		string	true	"Production id"
//	@Success		200	{object}	models.Production
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/productions/{id} [get]
func (h *Handler) GetProduction(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProduction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get production", err)
		return
	}
	setETag(w, p)
	writeJSON(w, http.StatusOK, p)
}

// CreateProduction handles POST /api/productions.
//
//	@Summary		Log a production and expand its protocols
//	@Tags			productions
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ProductionRequest	true	"Production"
//	@Success		201		{object}	ProductionResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/productions [post]
func (h *Handler) CreateProduction(w http.ResponseWriter, r *http.Request) {
	var req ProductionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, rep, err := h.svc.CreateProduction(r.Context(), req.model(""))
	if err != nil {
		writeError(w, "create production", err)
		return
	}
	setETag(w, p)
	writeJSON(w, http.StatusCreated, ProductionResponse{Production: p, Report: rep})
}

// UpdateProduction handles PUT /api/productions/{id}.
//
//	@Summary		Replace a production, moving its protocol activities on date or cheese change
//	@Tags			productions
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string				true	"Production id"
//	@Param			If-Match	header		string				false	"ETag for optimistic concurrency"
//	@Param			body		body		ProductionRequest	true	"Production"
//	@Success		200			{object}	ProductionResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/productions/{id} [put]
func (h *Handler) UpdateProduction(w http.ResponseWriter, r *http.Request) {
	var req ProductionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, rep, err := h.svc.UpdateProduction(r.Context(), req.model(chi.URLParam(r, "id")), ifMatch(r))
	if err != nil {
		writeError(w, "update production", err)
		return
	}
	setETag(w, p)
	writeJSON(w, http.StatusOK, ProductionResponse{Production: p, Report: rep})
}

// DeleteProduction handles DELETE /api/productions/{id}.
//
//	@Summary		Delete a production and its protocol activities
//	@Tags			productions
//	@Produce		json
//	@Param			id	path		string	true	"Production id"
//	@Success		200	{object}	ReportResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/productions/{id} [delete]
func (h *Handler) DeleteProduction(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.DeleteProduction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "delete production", err)
		return
	}
	writeJSON(w, http.StatusOK, ReportResponse{Report: rep})
}
