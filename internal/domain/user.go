package domain

import "time"

// UserRole enumerates back-office roles.
type UserRole string

const (
	UserRoleOperator UserRole = "OPERATOR"
	UserRoleAdmin    UserRole = "ADMIN"
)

// User is a back-office operator. Operators authenticate against the HTTP
// layer and their id is stamped onto ticket audit events as the actor.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
