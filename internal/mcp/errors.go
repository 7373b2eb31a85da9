package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/courses/internal/domain/course"
)

// APIError represents an MCP tool error.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to tool error codes. Anything unrecognized is a
// storage failure and is reported without detail.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, course.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: "invalid course input", RecoveryHint: "name must be non-blank and status one of scheduled, in_production, available"}
	case errors.Is(err, course.ErrDuplicateName):
		return &APIError{Code: "DUPLICATE_NAME", Message: "course name already in use", RecoveryHint: "choose another name"}
	case errors.Is(err, course.ErrConflict):
		return &APIError{Code: "CONFLICT", Message: "course name claimed by a concurrent request", RecoveryHint: "list courses and retry"}
	case errors.Is(err, course.ErrCourseNotFound):
		return &APIError{Code: "COURSE_NOT_FOUND", Message: "course not found", RecoveryHint: "check the id with list_courses"}
	case errors.Is(err, course.ErrCourseGone):
		return &APIError{Code: "COURSE_GONE", Message: "course deleted"}
	default:
		return &APIError{Code: "INTERNAL", Message: "internal error"}
	}
}
