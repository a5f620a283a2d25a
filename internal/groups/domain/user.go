package domain

import "time"

type User struct {
	ID           string
	Username     string
	DisplayName  string
	PasswordHash string // argon2id, PHC encoded
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
