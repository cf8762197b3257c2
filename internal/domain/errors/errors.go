package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrMissingField       = errors.New("required field missing")
	ErrInvalidLine        = errors.New("invalid order line")
	ErrAlreadyCheckedOut  = errors.New("checkout session already exists")
	ErrGateway            = errors.New("payment gateway failure")
)
