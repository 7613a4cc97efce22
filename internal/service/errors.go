package service

import "errors"

// Validation errors.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidAmount = errors.New("amount must be a positive number")
)

// Authentication errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrTransactionSettled = errors.New("transaction already settled")
)

var ErrInsufficientFunds = errors.New("insufficient funds")

// Upstream failures; the caller may retry the action.
var (
	ErrEncodeFailed  = errors.New("failed to generate qr code")
	ErrStoreConflict = errors.New("too many concurrent updates, try again")
)
