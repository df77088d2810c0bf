package domain

import "time"

// Event is a venue event that tickets are issued against. TokenSecret is the
// per-event signing secret generated once at creation; events migrated from
// before secrets existed may have it empty, in which case the token service
// falls back to the process-wide secret.
type Event struct {
	ID          string
	Name        string
	Description string
	Date        time.Time
	StartTime   string
	EndTime     string
	Location    string
	Capacity    int
	IsActive    bool
	TokenSecret string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
