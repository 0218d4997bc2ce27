package entity

import (
	"strings"
	"time"
)

// Identity is the authenticated admin bound to a session.
type Identity struct {
	Subject     string `json:"subject" db:"subject"`
	Email       string `json:"email" db:"email"`
	DisplayName string `json:"displayName" db:"display_name"`
}

// IdentityFromEmail synthesizes the admin identity for a verified address.
func IdentityFromEmail(email string) Identity {
	name := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		name = email[:at]
	}
	return Identity{
		Subject:     "email:" + email,
		Email:       email,
		DisplayName: name,
	}
}

type Session struct {
	BaseSimple
	Identity
	ExpiresAt time.Time `db:"expires_at"`
}

func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
