// Package models defines the server-side records persisted in the database.
package models

import "time"

// User is an account record. PasswordHash and Salt are write-only from the
// API's point of view and must never appear in responses or logs.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	Salt         []byte
	AvatarKey    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
