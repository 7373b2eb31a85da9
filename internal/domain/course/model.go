package course

import "time"

// Collection is the logical collection courses are stored in. Its id
// sequence counter is keyed "courses_id".
const Collection = "courses"

// TimeLayout is the text form of course timestamps, in storage and on the wire.
const TimeLayout = "2006-01-02T15:04:05Z"

// Status represents the production status of a course
type Status string

const (
	StatusScheduled    Status = "scheduled"
	StatusInProduction Status = "in_production"
	StatusAvailable    Status = "available"
)

// Statuses lists every recognized status.
var Statuses = []Status{StatusScheduled, StatusInProduction, StatusAvailable}

// Valid reports whether s is a recognized status.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProduction, StatusAvailable:
		return true
	}
	return false
}

// Course is a single course record. A non-nil DeletedAt marks it as
// logically deleted; deleted courses are never revived.
type Course struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// Deleted reports whether the course has been soft deleted.
func (c *Course) Deleted() bool {
	return c.DeletedAt != nil
}

// CourseRef is the id/name projection returned by listings
type CourseRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FormatTime renders t in TimeLayout (UTC).
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a timestamp written by FormatTime.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}
