package models

import "time"

// SessionToken is one active session for a user. Only the SHA-256 hash of
// the bearer token is stored; the serial ID preserves issuance order.
type SessionToken struct {
	ID        int64
	UserID    string
	TokenHash string
	CreatedAt time.Time
}
