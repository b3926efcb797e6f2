package domain

import "errors"

// request errors, mapped to 4xx by the http layer
var (
	ErrAlreadySubscribed = errors.New("already subscribed")
	ErrNotSubscribed     = errors.New("not subscribed")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrUserExists        = errors.New("username already registered")
	ErrInvalidURL        = errors.New("invalid feed url")
	ErrInvalidFilter     = errors.New("invalid entry filter")
	ErrInvalidInput      = errors.New("invalid input")
)

// ErrConflict is a storage unique constraint violation
var ErrConflict = errors.New("constraint violation")

// fetch failures, retryable on the next refresh
var (
	ErrNetwork = errors.New("network error")
	ErrParse   = errors.New("parse error")
)
