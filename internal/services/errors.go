package services

import "errors"

var (
	ErrInvalidTask        = errors.New("invalid task")
	ErrInvalidUser        = errors.New("invalid user")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidRange       = errors.New("invalid range")
)
