package domain

import "time"

// Person is an account holder. Email is the login key.
type Person struct {
	Identifier      int64             `json:"identifier"`
	Email           string            `json:"email"`
	FirstName       string            `json:"first_name"`
	LastName        string            `json:"last_name"`
	PasswordHash    []byte            `json:"-"`
	RegisteredSince time.Time         `json:"registered_since"`
	Active          bool              `json:"active"`
	Settings        map[string]string `json:"settings,omitempty"`
	Interests       map[string]string `json:"interests,omitempty"`
}

// FullName joins first and last name, trimmed.
func (p Person) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}
