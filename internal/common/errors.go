// Package common defines sentinel errors and constants shared by the
// server packages. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Device and pipeline errors.
	ErrCapture       = errors.New("capture failed")
	ErrUpload        = errors.New("upload failed")
	ErrArtifactWrite = errors.New("artifact write failed")

	// Lookup errors.
	ErrNotFound        = errors.New("not found")
	ErrSessionNotFound = errors.New("session not found")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Session transport errors.
	ErrNoTransport    = errors.New("no device transport")
	ErrSessionStopped = errors.New("session stopped")

	ErrInvalidConfig = errors.New("invalid config")
)
