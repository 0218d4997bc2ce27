package entity

import "time"

// VerificationCode is the single active login code for an email. Only the
// bcrypt hash of the code is persisted.
type VerificationCode struct {
	Email     string    `db:"email" json:"email"`
	CodeHash  string    `db:"code_hash" json:"code_hash"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
}

func (c *VerificationCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
