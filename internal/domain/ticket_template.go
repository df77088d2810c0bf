package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketTemplate is a purchasable ticket type scoped to an event. It owns
// the pricing used at issuance time: the price is copied onto the ticket,
// not referenced.
type TicketTemplate struct {
	ID           string
	EventID      string
	Name         string
	Description  string
	Price        decimal.Decimal
	MaxQuantity  int
	ClientMinAge int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
