// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// It is wrapped together with one of the more specific errors below.
	ErrValidation = errors.New("validation failed")

	// ErrItemIDEmpty is returned when a vocabulary item has a nil ID.
	ErrItemIDEmpty = errors.New("item ID cannot be empty")

	// ErrEmptyText is returned when the source or target text is blank.
	ErrEmptyText = errors.New("source and target text cannot be empty")

	// ErrInvalidStatus is returned when a status is not one of the known values.
	ErrInvalidStatus = errors.New("invalid item status")

	// ErrInvalidLevel is returned when a mastery level is not one of the known values.
	ErrInvalidLevel = errors.New("invalid mastery level")

	// ErrInvalidLanguage is returned when the original language is not one of the known values.
	ErrInvalidLanguage = errors.New("invalid original language")

	// ErrTooManyHints is returned when an item carries more than MaxHints hints.
	ErrTooManyHints = errors.New("too many pronunciation hints")

	// ErrNegativeCounter is returned when reviewCount or streak is negative.
	ErrNegativeCounter = errors.New("review counters cannot be negative")

	// ErrNextReviewUnset is returned when nextReviewAt is the zero instant.
	ErrNextReviewUnset = errors.New("next review time must be set")

	// ErrEmptyConjugation is returned when a conjugation table is present but has no forms.
	ErrEmptyConjugation = errors.New("conjugation table cannot be empty")
)
