package domain

import "time"

type Role struct {
	ID            string
	Name          string // unique
	Description   string
	PermissionIDs []string
	MenuIDs       []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RoleGraph is a role with its permissions loaded.
type RoleGraph struct {
	Role
	Permissions []Permission
}
