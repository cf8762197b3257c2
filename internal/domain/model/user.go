package model

import "time"

// Role describes the privilege level of a user.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// User represents a registered customer or staff member.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Actor is the authorization context passed into operations that branch on
// the caller's identity or privilege.
type Actor struct {
	UserID int64
	Role   Role
}

// Privileged reports whether the actor may operate on orders of other users.
func (a Actor) Privileged() bool {
	return a.Role == RoleAdmin || a.Role == RoleEmployee
}
