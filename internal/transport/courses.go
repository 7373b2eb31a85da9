package transport

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rpggio/courses/internal/domain/course"
)

type listResponse struct {
	Courses []course.CourseRef `json:"courses"`
}

// courseResponse is the single-course view. deletedAt is never exposed and
// createdAt is aliased to created_at.
type courseResponse struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Status    course.Status `json:"status"`
	UpdatedAt string        `json:"updatedAt"`
	CreatedAt string        `json:"created_at"`
}

func newCourseResponse(c *course.Course) courseResponse {
	return courseResponse{
		ID:        c.ID,
		Name:      c.Name,
		Status:    c.Status,
		UpdatedAt: course.FormatTime(c.UpdatedAt),
		CreatedAt: course.FormatTime(c.CreatedAt),
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, err.Error())
		return
	}

	refs, err := s.courses.List(r.Context(), opts)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Courses: refs})
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	id, ok := courseID(w, r)
	if !ok {
		return
	}

	c, err := s.courses.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCourseResponse(c))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req courseRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, err.Error())
		return
	}

	c, err := s.courses.Create(r.Context(), course.CreateRequest{
		Name:   req.Name,
		Status: course.Status(req.Status),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/courses/%d", c.ID))
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := courseID(w, r)
	if !ok {
		return
	}

	var req courseRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, err.Error())
		return
	}

	_, err := s.courses.Update(r.Context(), course.UpdateRequest{
		ID:     id,
		Name:   req.Name,
		Status: course.Status(req.Status),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := courseID(w, r)
	if !ok {
		return
	}

	if err := s.courses.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func courseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "invalid course id")
		return 0, false
	}
	return id, true
}

func parseListOptions(r *http.Request) (course.ListOptions, error) {
	var opts course.ListOptions
	q := r.URL.Query()
	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("skip must be a non-negative integer")
		}
		opts.Offset = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("limit must be a non-negative integer")
		}
		opts.Limit = n
	}
	return opts, nil
}
