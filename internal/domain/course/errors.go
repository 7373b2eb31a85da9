package course

import "errors"

var (
	// ErrInvalidInput indicates a blank name or unrecognized status.
	ErrInvalidInput = errors.New("invalid course input")
	// ErrDuplicateName indicates another active course already holds the name.
	ErrDuplicateName = errors.New("course name already in use")
	// ErrConflict indicates a concurrent writer claimed the name first.
	ErrConflict = errors.New("course name claimed by a concurrent request")
	// ErrCourseNotFound indicates no course with the id ever existed.
	ErrCourseNotFound = errors.New("course not found")
	// ErrCourseGone indicates the course exists but has been deleted.
	ErrCourseGone = errors.New("course deleted")
)
