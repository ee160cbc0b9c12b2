package gateway

import "errors"

var (
	// ErrHostNotAllowed is returned when a request targets a host outside the allow-list.
	ErrHostNotAllowed = errors.New("target host is not allowed")

	// ErrPathNotAllowed is returned when a forward path resolves outside the upstream base path.
	ErrPathNotAllowed = errors.New("forward path escapes the upstream base path")

	// ErrMissingToken is returned when a client token is required but absent.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrInvalidToken is returned when the client token is malformed or badly signed.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken is returned when the client token has expired.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrInvalidBody is returned when the request body is not a JSON document.
	ErrInvalidBody = errors.New("request body must be JSON")

	// ErrInvalidConfig is returned by New for unusable configuration.
	ErrInvalidConfig = errors.New("invalid gateway configuration")
)
