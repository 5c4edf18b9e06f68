// Package common defines shared constants and sentinel errors used across
// the portal client. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Auth errors. ErrUnauthorized is the single signal for forced logout:
	// any component observing it escalates to the session manager.
	ErrUnauthorized = errors.New("unauthorized")

	// Transport-level errors (no usable response from the backend).
	ErrUnavailable = errors.New("server unavailable")

	// Local validation errors, raised before any network call is made.
	ErrFileTooLarge       = errors.New("file exceeds the maximum upload size")
	ErrFileTypeNotAllowed = errors.New("file type is not accepted")

	// Mutation flow-control errors.
	ErrConflictInProgress = errors.New("another update for this report is in progress")
	ErrPreconditionFailed = errors.New("report is missing or already approved")
)
