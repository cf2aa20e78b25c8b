package model

import "time"

// Session is a server-side login session. The token is an opaque value stored
// in the session_token cookie.
type Session struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Token     string    `gorm:"index;unique" json:"-"`
	UserID    uint      `json:"userId"`
	User      *User     `json:"-"`
	ExpiresAt time.Time `json:"expires"`
}

func (s *Session) Expired() bool {
	return s.ExpiresAt.Before(time.Now())
}

// Account records an external identity linked to a user, one row per
// provider sign-in.
type Account struct {
	ID                uint      `gorm:"primarykey" json:"id"`
	CreatedAt         time.Time `json:"createdAt"`
	Provider          string    `json:"provider"`
	ProviderAccountID string    `json:"providerAccountId"`
	UserID            uint      `json:"userId"`
}
