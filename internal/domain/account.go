package domain

import (
	"fmt"
	"time"
)

// Role is the access class an account belongs to. It is a closed set; any
// other value is rejected at the boundary.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ParseRole converts a raw string into a Role.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleStudent, RoleAdmin:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// Account is a persisted identity record. Email is unique and immutable after
// creation; PasswordHash never leaves the process.
type Account struct {
	ID           string
	Email        string
	PasswordHash []byte
	Role         Role
	Profile      Profile
	CreatedAt    time.Time
}

// StudentSummary is the listing view of a student account. It deliberately
// carries no password hash and no profile contents.
type StudentSummary struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
