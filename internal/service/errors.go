package service

import (
	"errors"
	"fmt"
)

// Code is the stable, client-facing identifier of a failure
type Code string

const (
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeNotFound         Code = "NOT_FOUND"
	CodeParentNotFound   Code = "PARENT_NOT_FOUND"
	CodeForbidden        Code = "FORBIDDEN"
	CodeDuplicateName    Code = "DUPLICATE_NAME"
	CodeDuplicateEmail   Code = "DUPLICATE_EMAIL"
	CodeInvalidMove      Code = "INVALID_MOVE"
	CodeExpired          Code = "EXPIRED"
	CodePasswordRequired Code = "PASSWORD_REQUIRED"
	CodeInvalidPassword  Code = "INVALID_PASSWORD"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"
)

var (
	ErrValidation       = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrParentNotFound   = errors.New("parent folder not found")
	ErrForbidden        = errors.New("forbidden")
	ErrDuplicateName    = errors.New("an item with this name already exists here")
	ErrDuplicateEmail   = errors.New("email already exists")
	ErrInvalidMove      = errors.New("cannot move a folder into itself or one of its descendants")
	ErrExpired          = errors.New("link has expired")
	ErrPasswordRequired = errors.New("link requires a password")
	ErrInvalidPassword  = errors.New("invalid link password")
	ErrUnauthorized     = errors.New("authentication required")
	ErrRateLimited      = errors.New("too many requests")
	ErrStoreUnavailable = errors.New("storage temporarily unavailable")
)

var codes = []struct {
	err  error
	code Code
}{
	{ErrValidation, CodeValidation},
	{ErrParentNotFound, CodeParentNotFound},
	{ErrNotFound, CodeNotFound},
	{ErrForbidden, CodeForbidden},
	{ErrDuplicateName, CodeDuplicateName},
	{ErrDuplicateEmail, CodeDuplicateEmail},
	{ErrInvalidMove, CodeInvalidMove},
	{ErrExpired, CodeExpired},
	{ErrPasswordRequired, CodePasswordRequired},
	{ErrInvalidPassword, CodeInvalidPassword},
	{ErrUnauthorized, CodeUnauthorized},
	{ErrRateLimited, CodeRateLimited},
	{ErrStoreUnavailable, CodeStoreUnavailable},
}

// CodeOf classifies err. Anything unrecognised is a store failure.
func CodeOf(err error) Code {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeStoreUnavailable
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// storeErr marks a relational or object store failure. The cause stays
// in the chain for logging but is never shown to clients.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
