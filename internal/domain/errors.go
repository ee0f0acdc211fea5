package domain

import "errors"

// Domain errors
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrStoreClosed   = errors.New("store is closed")
	ErrNameRequired  = errors.New("name is required")
	ErrEmailRequired = errors.New("email is required")
)
