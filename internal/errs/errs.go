// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package errs defines the sentinel errors shared by the store, guard and
// service layers. Callers wrap them with fmt.Errorf("...: %w") and test
// with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the acting principal may not perform
	// the requested operation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when a referenced post, tag, category,
	// comment or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an insert loses a race on a unique
	// constraint.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput is returned when submitted fields fail validation.
	ErrInvalidInput = errors.New("invalid input")
)

// NotFound wraps ErrNotFound with the entity name.
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// InputError is a validation failure carrying a message safe to show to
// the user. It matches ErrInvalidInput.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return ErrInvalidInput.Error() + ": " + e.Msg }

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// Invalid returns an *InputError with the given message.
func Invalid(msg string) error {
	return &InputError{Msg: msg}
}
