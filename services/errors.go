package services

import (
	"errors"
	"fmt"
	"strings"
)

// Shared errors used across services and the HTTP mapping layer.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Authentication / authorization
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Conflicts
	ErrEmailConflict      = errors.New("email address is already in use")
	ErrCourseNameConflict = errors.New("course name is already in use")
	ErrSquadNameConflict  = errors.New("squad name is already in use")
	ErrAlreadySquadMember = errors.New("already a member of this squad")

	// Entity-specific not-found (more context than ErrNotFound)
	ErrProfileNotFound = errors.New("profile not found")
	ErrCourseNotFound  = errors.New("course not found")
	ErrRoundNotFound   = errors.New("round not found")
	ErrSquadNotFound   = errors.New("squad not found")

	// Round save failures, surfaced with the underlying store message.
	ErrCourseCreationFailed = errors.New("course creation failed")
	ErrRoundCreationFailed  = errors.New("round creation failed")
	ErrScoreInsertFailed    = errors.New("score insert failed")

	// Password reset
	ErrResetTokenInvalid = errors.New("invalid or expired reset token")
)

// ValidationError carries per-field messages back to the form. It blocks
// submission before any store call is made.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
