package user

import (
	"errors"
	"strings"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

type User struct {
	ID             string   `json:"_id,omitempty"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	PasswordHash   string   `json:"-"` // never expose hash in JSON
	ProfilePicture string   `json:"profilePicture"`
	DOB            string   `json:"dob"`
	Hobbies        []string `json:"hobbies"`
}

// Identity is what signup hands back: no id, no profile, no hash.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u User) Identity() Identity {
	return Identity{Name: u.Name, Email: u.Email}
}

type SignUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// NormalizeEmail makes uniqueness case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// New builds a fresh record with empty profile fields.
func New(name, email, passwordHash string) User {
	return User{
		Name:           strings.TrimSpace(name),
		Email:          NormalizeEmail(email),
		PasswordHash:   passwordHash,
		ProfilePicture: "",
		DOB:            "",
		Hobbies:        []string{},
	}
}
