package mcp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/courses/internal/domain/course"
)

const (
	serverName    = "courses"
	serverVersion = "0.1.0"
)

// CourseService defines course operations needed by MCP.
type CourseService interface {
	List(ctx context.Context, opts course.ListOptions) ([]course.CourseRef, error)
	Get(ctx context.Context, id int64) (*course.Course, error)
	Create(ctx context.Context, req course.CreateRequest) (*course.Course, error)
	Update(ctx context.Context, req course.UpdateRequest) (*course.Course, error)
	Delete(ctx context.Context, id int64) error
}

// Config contains server configuration.
type Config struct {
	Courses CourseService
	Logger  *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	registerTools(server, cfg.Courses)

	return server
}

// NewHTTPHandler serves the MCP server over streamable HTTP.
func NewHTTPHandler(server *sdkmcp.Server) http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{
			SessionTimeout: 30 * time.Minute,
		},
	)
}
