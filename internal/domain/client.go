package domain

import "time"

// Client is an end customer that tickets are issued to. DocumentID is the
// natural key used for lookups during issuance; clients are created lazily
// when an issuance request references an unknown document id.
type Client struct {
	ID         string
	Name       string
	Email      string
	Phone      string
	DocumentID string
	BirthDate  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
