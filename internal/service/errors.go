package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInput marks errors caused by user input rather than storage.
	ErrInput = errors.New("invalid input")
	// ErrInvalidCredentials is returned by Login for an unknown user or a
	// wrong password.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", ErrInput)
)
