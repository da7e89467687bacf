package repository

import "errors"

var (
	ErrNotFound             = errors.New("record not found")
	ErrInvalidTransition    = errors.New("status transition not allowed")
	ErrDuplicateTransaction = errors.New("transaction id already exists for gateway")
)
