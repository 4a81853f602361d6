package adapters

import (
	"context"
	"strings"

	"github.com/railzwaylabs/billinghub/internal/transport"
)

// TestFailedError is a connection test the backend answered but rejected.
type TestFailedError struct {
	Message string
}

func (e *TestFailedError) Error() string {
	if e.Message == "" {
		return "connection test failed"
	}
	return e.Message
}

type testResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// TestConnection asks the backend to authenticate against the vendor with the
// connection's stored credentials. It is the same call for every platform.
func TestConnection(ctx context.Context, backend Backend, connectionID string) error {
	var out testResult
	if err := backend.Post(ctx, transport.Path("api", "connections", connectionID, "test"), nil, &out); err != nil {
		return err
	}
	if !out.Success {
		msg := strings.TrimSpace(out.Message)
		if msg == "" {
			msg = strings.TrimSpace(out.Error)
		}
		return &TestFailedError{Message: msg}
	}
	return nil
}

// NonNil keeps empty lists serialized as [] rather than null.
func NonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
