package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rpggio/courses/internal/domain/course"
)

// Error codes carried in error bodies.
const (
	CodeInvalidInput   = "INVALID_INPUT"
	CodeDuplicateName  = "DUPLICATE_NAME"
	CodeConflict       = "CONFLICT"
	CodeCourseNotFound = "COURSE_NOT_FOUND"
	CodeCourseGone     = "COURSE_GONE"
	CodeInternal       = "INTERNAL"
)

// ErrorBody is the envelope of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeServiceError maps service errors to HTTP statuses. Storage failures are
// reported without detail; the service has already logged them.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, course.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, CodeInvalidInput, course.ErrInvalidInput.Error())
	case errors.Is(err, course.ErrDuplicateName):
		writeError(w, http.StatusBadRequest, CodeDuplicateName, course.ErrDuplicateName.Error())
	case errors.Is(err, course.ErrConflict):
		writeError(w, http.StatusConflict, CodeConflict, course.ErrConflict.Error())
	case errors.Is(err, course.ErrCourseNotFound):
		writeError(w, http.StatusNotFound, CodeCourseNotFound, course.ErrCourseNotFound.Error())
	case errors.Is(err, course.ErrCourseGone):
		writeError(w, http.StatusGone, CodeCourseGone, course.ErrCourseGone.Error())
	default:
		s.logger.DebugContext(r.Context(), "request failed", "request_id", RequestIDFromContext(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
