package model

import (
	"context"
	"time"
)

const (
	RoleUnassigned = "UNASSIGNED"
	RoleScout      = "SCOUT"
	RoleAdult      = "ADULT"
	RoleAdmin      = "ADMIN"
)

// Roles lists every role a user can hold, ordered by increasing privilege.
var Roles = []string{RoleUnassigned, RoleScout, RoleAdult, RoleAdmin}

// User domain object defining a portal user. Users are created on first
// successful sign-in and are never hard-deleted.
type User struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Email      string    `gorm:"index;unique" json:"email"`
	Name       string    `json:"name"`
	ImageURL   string    `json:"image,omitempty"`
	Role       string    `gorm:"default:UNASSIGNED" json:"role"`
	LastActive time.Time `json:"lastActive"`
	Annotation string    `json:"annotation,omitempty"`
	// Password is only set for the bootstrap administrator; everyone else
	// signs in through Google.
	Password string `json:"-"`
}

func (u *User) IsAdministrator() bool {
	return u.Role == RoleAdmin
}

// IsValidRole reports whether role is one of the declared roles.
func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

type ctxKey int

var userKey ctxKey

// NewContextWithUser returns a new [context.Context] that carries user.
func NewContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUserFromContext returns the user stored in ctx by the authentication
// middleware, if any.
func GetUserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userKey).(*User)
	return user, ok
}
