package server

import (
	"context"
	"net/http/httptest"
	"testing"
)

func bg() context.Context { return context.Background() }

// newTestClient starts s behind an httptest server and returns a client
// for it. Both are shut down when the test ends.
func newTestClient(t *testing.T, s *Server) *Client {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Stop()
	})
	return NewClient(ts.Client(), ts.URL)
}
