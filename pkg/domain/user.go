package domain

import "time"

// User is an account identified by username; the password hash is opaque
type User struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
