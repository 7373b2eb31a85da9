package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/courses/internal/domain/course"
)

func registerTools(server *sdkmcp.Server, courses CourseService) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_courses",
		Description: "List course ids and names, oldest first. Deleted courses are included.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListCoursesParams) (*sdkmcp.CallToolResult, ListCoursesResult, error) {
		if in.Skip < 0 || in.Limit < 0 {
			return nil, ListCoursesResult{}, &APIError{Code: "INVALID_INPUT", Message: "skip and limit must be non-negative"}
		}
		refs, err := courses.List(ctx, course.ListOptions{Offset: in.Skip, Limit: in.Limit})
		if err != nil {
			return nil, ListCoursesResult{}, MapError(err)
		}
		return jsonResult(ListCoursesResult{Courses: refs})
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_course",
		Description: "Get a course by id. Fails with COURSE_GONE for deleted courses.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetCourseParams) (*sdkmcp.CallToolResult, CourseResult, error) {
		c, err := courses.Get(ctx, in.ID)
		if err != nil {
			return nil, CourseResult{}, MapError(err)
		}
		return jsonResult(newCourseResult(c))
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_course",
		Description: "Create a course with a unique name and a status.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateCourseParams) (*sdkmcp.CallToolResult, CreateCourseResult, error) {
		c, err := courses.Create(ctx, course.CreateRequest{Name: in.Name, Status: course.Status(in.Status)})
		if err != nil {
			return nil, CreateCourseResult{}, MapError(err)
		}
		return jsonResult(CreateCourseResult{ID: c.ID, Location: fmt.Sprintf("/courses/%d", c.ID)})
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_course",
		Description: "Replace the name and status of an active course.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateCourseParams) (*sdkmcp.CallToolResult, CourseResult, error) {
		c, err := courses.Update(ctx, course.UpdateRequest{ID: in.ID, Name: in.Name, Status: course.Status(in.Status)})
		if err != nil {
			return nil, CourseResult{}, MapError(err)
		}
		return jsonResult(newCourseResult(c))
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_course",
		Description: "Soft delete an active course. Deleted courses cannot be restored.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in DeleteCourseParams) (*sdkmcp.CallToolResult, DeleteCourseResult, error) {
		if err := courses.Delete(ctx, in.ID); err != nil {
			return nil, DeleteCourseResult{}, MapError(err)
		}
		return jsonResult(DeleteCourseResult{ID: in.ID, Deleted: true})
	})
}

// jsonResult renders out as text content alongside the structured output.
func jsonResult[T any](out T) (*sdkmcp.CallToolResult, T, error) {
	data, err := json.Marshal(out)
	if err != nil {
		var zero T
		return nil, zero, fmt.Errorf("encode result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, out, nil
}
