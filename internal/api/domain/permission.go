package domain

import "time"

// Permission is the leaf of the authorization graph. Code is the authority
// string used in access checks, e.g. "USER_CREATE".
type Permission struct {
	ID          string
	Name        string
	Code        string // unique
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
