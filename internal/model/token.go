package model

import "github.com/google/uuid"

// TokenManager signs and verifies bearer tokens carrying user identity.
type TokenManager interface {
	Generate(userID uuid.UUID, email string) (string, error)
	Parse(token string) (userID uuid.UUID, email string, err error)
}

// PasswordHasher hashes credentials one-way and verifies them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(password, hash string) bool
}
