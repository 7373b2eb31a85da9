package mcp

import "github.com/rpggio/courses/internal/domain/course"

type ListCoursesParams struct {
	Skip  int `json:"skip,omitempty" jsonschema:"number of courses to skip"`
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of courses to return, 0 for all"`
}

type ListCoursesResult struct {
	Courses []course.CourseRef `json:"courses"`
}

type GetCourseParams struct {
	ID int64 `json:"id" jsonschema:"course id"`
}

type CreateCourseParams struct {
	Name   string `json:"name" jsonschema:"course name, unique among active courses"`
	Status string `json:"status" jsonschema:"one of scheduled, in_production, available"`
}

type CreateCourseResult struct {
	ID       int64  `json:"id"`
	Location string `json:"location"`
}

type UpdateCourseParams struct {
	ID     int64  `json:"id" jsonschema:"course id"`
	Name   string `json:"name" jsonschema:"new course name"`
	Status string `json:"status" jsonschema:"one of scheduled, in_production, available"`
}

type DeleteCourseParams struct {
	ID int64 `json:"id" jsonschema:"course id"`
}

type DeleteCourseResult struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}

// CourseResult is the tool view of a single course.
type CourseResult struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Status    course.Status `json:"status"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}

func newCourseResult(c *course.Course) CourseResult {
	return CourseResult{
		ID:        c.ID,
		Name:      c.Name,
		Status:    c.Status,
		CreatedAt: course.FormatTime(c.CreatedAt),
		UpdatedAt: course.FormatTime(c.UpdatedAt),
	}
}
