// Package adapterstest provides a recording fake of the billing backend.
package adapterstest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/railzwaylabs/billinghub/internal/transport"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Request is one call the fake backend received.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

type Backend struct {
	*transport.Client

	mu       sync.Mutex
	requests []Request
}

// New starts a fake backend answering every request with handler.
func New(t *testing.T, handler http.HandlerFunc) *Backend {
	t.Helper()
	b := &Backend{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		req := Request{Method: r.Method, Path: r.URL.EscapedPath(), Query: r.URL.RawQuery}
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &req.Body)
		}
		b.mu.Lock()
		b.requests = append(b.requests, req)
		b.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := transport.New(transport.Config{BaseURL: srv.URL, Timeout: 2 * time.Second}, zap.NewNop(), nil)
	require.NoError(t, err)
	b.Client = client
	return b
}

// JSON answers every request with the given status and body.
func JSON(t *testing.T, status int, body string) *Backend {
	return New(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

func (b *Backend) Last() Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		return Request{}
	}
	return b.requests[len(b.requests)-1]
}
