package domain

import (
	"time"
)

type Tokens struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Caller is the identity resolved from a verified access token.
type Caller struct {
	UserID string
	Role   UserRole
}
