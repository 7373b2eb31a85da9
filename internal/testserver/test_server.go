// Package testserver runs the full HTTP stack against an in-memory SQLite
// database for end-to-end tests.
package testserver

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpggio/courses/internal/domain/course"
	"github.com/rpggio/courses/internal/mcp"
	"github.com/rpggio/courses/internal/sqlite"
	"github.com/rpggio/courses/internal/transport"
)

type TestServer struct {
	Server  *httptest.Server
	DB      *sqlite.DB
	Service *course.Service
}

// Response is a fully read HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

func New(t *testing.T) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	svc := course.NewService(sqlite.NewCourseRepository(db), sqlite.NewSequenceRepository(db), nil)
	mcpServer := mcp.NewServer(mcp.Config{Courses: svc})

	server := httptest.NewServer(transport.NewServer(svc, transport.Options{
		MCP: mcp.NewHTTPHandler(mcpServer),
	}))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server:  server,
		DB:      db,
		Service: svc,
	}
}

// URL returns the absolute URL of path on the test server.
func (ts *TestServer) URL(path string) string {
	return ts.Server.URL + path
}

// Do sends a request with an optional JSON body. It is safe for concurrent use.
func (ts *TestServer) Do(method, path, body string) (Response, error) {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, ts.URL(path), reader)
	if err != nil {
		return Response{}, err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.Server.Client().Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}
	return Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// MustDo is Do for the test goroutine.
func (ts *TestServer) MustDo(t *testing.T, method, path, body string) Response {
	t.Helper()
	resp, err := ts.Do(method, path, body)
	require.NoError(t, err)
	return resp
}
