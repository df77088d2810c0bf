package dto

import "time"

// CreateClientRequest payload.
type CreateClientRequest struct {
	Name       string     `json:"name"`
	DocumentID string     `json:"documentId"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	BirthDate  *time.Time `json:"birthDate,omitempty"`
}

// ClientResponse payload.
type ClientResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	DocumentID string    `json:"documentId"`
	BirthDate  time.Time `json:"birthDate"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
