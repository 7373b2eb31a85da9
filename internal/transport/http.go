package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/rpggio/courses/internal/domain/course"
)

// CourseService is the course API the HTTP layer depends on.
type CourseService interface {
	List(ctx context.Context, opts course.ListOptions) ([]course.CourseRef, error)
	Get(ctx context.Context, id int64) (*course.Course, error)
	Create(ctx context.Context, req course.CreateRequest) (*course.Course, error)
	Update(ctx context.Context, req course.UpdateRequest) (*course.Course, error)
	Delete(ctx context.Context, id int64) error
}

// Options configures optional parts of the router.
type Options struct {
	Logger *slog.Logger
	// CORSOrigins enables CORS for the listed origins when non-empty.
	CORSOrigins []string
	// MCP, when set, is mounted at /mcp.
	MCP http.Handler
}

// Server wires HTTP handlers.
type Server struct {
	courses CourseService
	logger  *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(courses CourseService, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"Content-Type", RequestIDHeader, "Mcp-Session-Id"},
			ExposedHeaders: []string{"Location", RequestIDHeader},
		}).Handler)
	}

	srv := &Server{courses: courses, logger: logger}

	r.Get("/health", srv.handleHealth)
	r.Route("/courses", func(r chi.Router) {
		r.Get("/", srv.handleList)
		r.Post("/", srv.handleCreate)
		r.Get("/{id}", srv.handleFind)
		r.Put("/{id}", srv.handleUpdate)
		r.Delete("/{id}", srv.handleDelete)
	})

	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
		r.Handle("/mcp/*", opts.MCP)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
