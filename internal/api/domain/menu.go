package domain

import "time"

type Menu struct {
	ID         string
	Title      string
	Path       string // unique
	Icon       string
	OrderIndex int
	ParentID   *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MenuNode is a menu with its children resolved, used by the tree endpoint.
type MenuNode struct {
	Menu
	Children []*MenuNode
}
