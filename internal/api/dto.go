package api

import (
	"github.com/starford/caseificio/internal/calendar"
	"github.com/starford/caseificio/internal/models"
	"github.com/starford/caseificio/internal/schedule"
	"github.com/starford/caseificio/internal/service"
	"github.com/starford/caseificio/internal/stats"
)

// CheeseTypeRequest is the body of POST and PUT /cheese-types.
type CheeseTypeRequest struct {
	Name     string                `json:"name" example:"Caciotta" validate:"required"`
	Color    string                `json:"color" example:"#F2C14E"`
	Protocol []models.ProtocolStep `json:"protocol"`
	Sales    []models.SalesShare   `json:"sales,omitempty"`
}

func (req CheeseTypeRequest) model(id string) models.CheeseType {
	return models.CheeseType{
		ID:       id,
		Name:     req.Name,
		Color:    req.Color,
		Protocol: req.Protocol,
		Sales:    req.Sales,
	}
}

// ProductionRequest is the body of POST and PUT /productions.
type ProductionRequest struct {
	Date             calendar.Date             `json:"date" example:"2026-03-01" validate:"required"`
	ProductionNumber string                    `json:"production_number" example:"2026-001" validate:"required"`
	Cheeses          []models.ProductionCheese `json:"cheeses" validate:"required"`
	Notes            string                    `json:"notes,omitempty"`
}

func (req ProductionRequest) model(id string) models.Production {
	return models.Production{
		ID:               id,
		Date:             req.Date,
		ProductionNumber: req.ProductionNumber,
		Cheeses:          req.Cheeses,
		Notes:            req.Notes,
	}
}

// ActivityRequest is the body of POST and PUT /activities.
type ActivityRequest struct {
	Title          string              `json:"title" example:"Pulizia caldaia" validate:"required"`
	Description    string              `json:"description,omitempty"`
	Date           calendar.Date       `json:"date" example:"2026-03-02" validate:"required"`
	Type           models.ActivityType `json:"type" example:"recurring" validate:"required"`
	Recurrence     models.Recurrence   `json:"recurrence,omitempty" example:"weekly"`
	CheeseTypeID   string              `json:"cheese_type_id,omitempty"`
	Completed      bool                `json:"completed"`
	CompletedDates []string            `json:"completed_dates,omitempty"`
}

func (req ActivityRequest) model(id string) models.Activity {
	return models.Activity{
		ID:             id,
		Title:          req.Title,
		Description:    req.Description,
		Date:           req.Date,
		Type:           req.Type,
		Recurrence:     req.Recurrence,
		CheeseTypeID:   req.CheeseTypeID,
		Completed:      req.Completed,
		CompletedDates: req.CompletedDates,
	}
}

// CheeseTypeResponse wraps a saved cheese type and the regeneration it
// triggered.
type CheeseTypeResponse struct {
	CheeseType models.CheeseType `json:"cheese_type" validate:"required"`
	Report     service.Report    `json:"report" validate:"required"`
}

// ProductionResponse wraps a saved production and the protocol activities
// created or replaced for it.
type ProductionResponse struct {
	Production models.Production `json:"production" validate:"required"`
	Report     service.Report    `json:"report" validate:"required"`
}

// ReportResponse is returned by cascading deletes.
type ReportResponse struct {
	Report service.Report `json:"report" validate:"required"`
}

// AgendaResponse is the agenda of one day.
type AgendaResponse struct {
	Date  calendar.Date         `json:"date" validate:"required"`
	Items []schedule.AgendaItem `json:"items" validate:"required"`
}

// AgendaRangeResponse holds one agenda per day.
type AgendaRangeResponse struct {
	Days []schedule.DayAgenda `json:"days" validate:"required"`
}

// OccurrencesResponse lists the due dates of one activity.
type OccurrencesResponse struct {
	ActivityID string          `json:"activity_id" validate:"required"`
	Dates      []calendar.Date `json:"dates" validate:"required"`
}

// MonthlyStatsResponse holds the twelve monthly rollups of a year.
type MonthlyStatsResponse struct {
	Year   int                `json:"year" example:"2026" validate:"required"`
	Months []stats.MonthStats `json:"months" validate:"required"`
}
