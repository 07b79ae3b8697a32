package models

import "time"

type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	Organization *string   `json:"organization" db:"organization"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// PublicUser is the client-facing view of a user. It never carries the
// password hash.
type PublicUser struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	IsActive     bool    `json:"is_active"`
	Organization *string `json:"organization"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		IsActive:     u.IsActive,
		Organization: u.Organization,
	}
}
