package service

import (
	"regexp"
	"time"

	"github.com/venuepass/ticketing-service/internal/validation"
)

// Validation schemas are configuration values constructed here and handed to
// the services, not literals owned by the workflows.

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern    = regexp.MustCompile(`^\+?[\d\s-]{9,}$`)
	documentPattern = regexp.MustCompile(`^\d{8}[A-Z]?$`)
)

// IssueTicketSchema validates an issuance request: template, event and a
// client object naming either an existing id or a document id.
func IssueTicketSchema() validation.Schema {
	return validation.Schema{
		{Field: "templateId", Rule: validation.Rule{Required: true, Type: validation.TypeString}},
		{Field: "eventId", Rule: validation.Rule{Required: true, Type: validation.TypeString}},
		{Field: "client", Rule: validation.Rule{
			Required: true,
			Type:     validation.TypeObject,
			Custom:   validation.RequireAnyOf("id", "documentId"),
		}},
	}
}

// CreateClientSchema validates direct client creation.
func CreateClientSchema(now func() time.Time) validation.Schema {
	return validation.Schema{
		{Field: "name", Rule: validation.Rule{Required: true, Type: validation.TypeString, MinLength: validation.Int(3), MaxLength: validation.Int(100)}},
		{Field: "documentId", Rule: validation.Rule{
			Required: true,
			Type:     validation.TypeString,
			Pattern:  documentPattern,
			Message:  "invalid document id format",
		}},
		{Field: "email", Rule: validation.Rule{Type: validation.TypeString, Pattern: emailPattern, Message: "invalid email"}},
		{Field: "phone", Rule: validation.Rule{Type: validation.TypeString, Pattern: phonePattern, Message: "invalid phone format"}},
		{Field: "birthDate", Rule: validation.Rule{Type: validation.TypeDate, Custom: validation.MinimumAge(18, now)}},
	}
}

// CreateEventSchema validates event creation.
func CreateEventSchema(now func() time.Time) validation.Schema {
	return validation.Schema{
		{Field: "name", Rule: validation.Rule{
			Required:  true,
			Type:      validation.TypeString,
			MinLength: validation.Int(3),
			MaxLength: validation.Int(100),
			Message:   "name must be between 3 and 100 characters",
		}},
		{Field: "description", Rule: validation.Rule{Required: true, Type: validation.TypeString, MaxLength: validation.Int(500)}},
		{Field: "date", Rule: validation.Rule{
			Required: true,
			Type:     validation.TypeDate,
			Custom:   validation.FutureDate(now),
			Message:  "date must be later than the current date",
		}},
		{Field: "startTime", Rule: validation.Rule{Required: true, Type: validation.TypeString}},
		{Field: "endTime", Rule: validation.Rule{Required: true, Type: validation.TypeString}},
		{Field: "location", Rule: validation.Rule{Required: true, Type: validation.TypeString}},
		{Field: "capacity", Rule: validation.Rule{
			Required: true,
			Type:     validation.TypeNumber,
			Min:      validation.Float(1),
			Message:  "capacity must be greater than 0",
		}},
		{Field: "isActive", Rule: validation.Rule{Type: validation.TypeBoolean}},
		{Field: "tokenSecret", Rule: validation.Rule{NotAllowed: true, Message: "tokenSecret is generated, not supplied"}},
	}
}

// CreateTemplateSchema validates ticket template creation.
func CreateTemplateSchema() validation.Schema {
	return validation.Schema{
		{Field: "eventId", Rule: validation.Rule{Required: true, Type: validation.TypeString}},
		{Field: "name", Rule: validation.Rule{Required: true, Type: validation.TypeString, MinLength: validation.Int(3), MaxLength: validation.Int(100)}},
		{Field: "description", Rule: validation.Rule{Type: validation.TypeString, MaxLength: validation.Int(500)}},
		{Field: "price", Rule: validation.Rule{Required: true, Type: validation.TypeNumber, Custom: validation.PositiveAmount()}},
		{Field: "maxQuantity", Rule: validation.Rule{Required: true, Type: validation.TypeNumber, Min: validation.Float(1)}},
		{Field: "clientMinAge", Rule: validation.Rule{Type: validation.TypeNumber, Min: validation.Float(0)}},
	}
}
