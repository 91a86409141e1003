package models

import "github.com/google/uuid"

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RolePlayer UserRole = "player"
)

func (r UserRole) IsValid() bool {
	return r == RoleAdmin || r == RolePlayer
}

// RoleGrant - строка таблицы user_roles.
type RoleGrant struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Role   UserRole  `json:"role"`
}
