package domain

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	PasswordHash string // argon2 encoded
	Active       bool   // inactive users fail authentication even with valid credentials
	RoleIDs      []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserGraph is a user with its role/permission graph fully loaded within a
// single read transaction. This is the input to authority resolution; loading
// it is an explicit operation, never a side effect of field access.
type UserGraph struct {
	User
	Roles []RoleGraph
}
