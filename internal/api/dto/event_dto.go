package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateEventRequest payload. Token secrets are never accepted from the
// outside; the service generates them.
type CreateEventRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	IsActive    *bool     `json:"isActive,omitempty"`
}

// EventResponse deliberately omits the signing secret.
type EventResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SetEventActiveRequest payload.
type SetEventActiveRequest struct {
	IsActive bool `json:"isActive"`
}

// CreateTemplateRequest payload.
type CreateTemplateRequest struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	MaxQuantity  int             `json:"maxQuantity"`
	ClientMinAge int             `json:"clientMinAge"`
	IsActive     *bool           `json:"isActive,omitempty"`
}

// TemplateResponse payload.
type TemplateResponse struct {
	ID           string          `json:"id"`
	EventID      string          `json:"eventId"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	MaxQuantity  int             `json:"maxQuantity"`
	ClientMinAge int             `json:"clientMinAge"`
	IsActive     bool            `json:"isActive"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}
