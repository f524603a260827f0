package user

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("email already in use")
)

type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Author is the public projection of a user embedded in articles.
type Author struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// AsAuthor returns the author projection of u.
func (u *User) AsAuthor() Author {
	return Author{ID: u.ID, Email: u.Email}
}
