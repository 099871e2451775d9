package repository

import "errors"

var (
	// ErrNotFound is returned when the row does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("not found")
	// ErrUserExists is returned when registering a taken username.
	ErrUserExists = errors.New("user already exists")
)
