package models

import "time"

// Task belongs to exactly one user; UserID is immutable after creation and
// every query is constrained to it.
type Task struct {
	ID          string
	UserID      string
	Description string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
