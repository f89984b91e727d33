// Package testhelper serves recorded registry responses to client tests.
package testhelper

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// LoadTestdata loads a file from the caller's testdata directory.
func LoadTestdata(t testing.TB, filename string) []byte {
	t.Helper()

	path := filepath.Join("testdata", filename)
	data, err := os.ReadFile(path) //nolint:gosec // Test file paths are controlled
	if err != nil {
		t.Fatalf("Failed to load testdata file %s: %v", path, err)
	}
	return data
}

// serverPlaceholder in a fixture is replaced by the test server's base URL,
// so recorded pagination links point back at the fixture server.
const serverPlaceholder = "{{server}}"

// Route maps a request to a fixture. Query is matched exactly when set.
type Route struct {
	Path    string
	Query   string
	Fixture string
	Status  int
}

// Server is an httptest server that replays fixtures and records hits.
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	hits   map[string]int
	accept []string
}

// NewServer starts a fixture server; it is closed when the test ends.
// Unmatched requests get a 404 with a JSON:API error body.
func NewServer(t testing.TB, routes ...Route) *Server {
	t.Helper()

	bodies := make([][]byte, len(routes))
	for i, r := range routes {
		if r.Fixture != "" {
			bodies[i] = LoadTestdata(t, r.Fixture)
		}
	}

	s := &Server{hits: map[string]int{}}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.mu.Lock()
		s.hits[req.URL.Path]++
		s.accept = append(s.accept, req.Header.Get("Accept"))
		s.mu.Unlock()

		for i, r := range routes {
			if r.Path != req.URL.Path || (r.Query != "" && r.Query != req.URL.RawQuery) {
				continue
			}
			w.Header().Set("Content-Type", "application/vnd.api+json")
			status := r.Status
			if status == 0 {
				status = http.StatusOK
			}
			w.WriteHeader(status)
			_, _ = w.Write(bytes.ReplaceAll(bodies[i], []byte(serverPlaceholder), []byte(s.URL)))
			return
		}
		w.Header().Set("Content-Type", "application/vnd.api+json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[{"status":"404","title":"Not Found"}]}`))
	}))
	t.Cleanup(s.Close)
	return s
}

// Hits returns how often path was requested.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// AcceptHeaders returns the Accept header of every request received.
func (s *Server) AcceptHeaders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.accept...)
}
