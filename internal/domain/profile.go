package domain

import "time"

// Profile is the stored identity for an account. Role is never embedded
// here; it is resolved from role assignments on each lookup.
type Profile struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
