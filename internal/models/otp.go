package models

import "time"

// OTPTTL is how long a code stays valid after issuance.
const OTPTTL = 5 * time.Minute

// OTPCode is a single one-time passcode issued to a user. Codes are never
// deleted, only flagged used, so every verification attempt stays auditable.
type OTPCode struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	Code      string    `json:"-" db:"code"` // zero-padded, always 6 digits
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Used      bool      `json:"used" db:"used"`
}

// Expired reports whether the code is past its expiry at the given instant.
func (c OTPCode) Expired(now time.Time) bool {
	return c.ExpiresAt.Before(now)
}
