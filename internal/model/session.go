package model

import "errors"

// SessionManager issues and verifies portal session tokens.
type SessionManager interface {
	GenerateSessionToken(username string) (string, error)
	ParseSessionToken(token string) (string, error)
}

var (
	ErrSessionMissing = errors.New("not logged in")
	ErrSessionInvalid = errors.New("session is invalid or expired")
)
