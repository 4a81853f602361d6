package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/railzwaylabs/billinghub/internal/adapters"
	"github.com/railzwaylabs/billinghub/internal/adapters/adapterstest"
	"github.com/railzwaylabs/billinghub/internal/adapters/maxio"
	"github.com/railzwaylabs/billinghub/internal/adapters/stripe"
	"github.com/railzwaylabs/billinghub/internal/adapters/zuora"
	auditdomain "github.com/railzwaylabs/billinghub/internal/audit/domain"
	"github.com/railzwaylabs/billinghub/internal/clock"
	"github.com/railzwaylabs/billinghub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeBackend keeps connections in memory the way the billing backend does.
type fakeBackend struct {
	mu       sync.Mutex
	conns    []domain.Connection
	testBody string
}

func (f *fakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/connections":
		_ = json.NewEncoder(w).Encode(f.conns)
	case r.Method == http.MethodPost && r.URL.Path == "/api/connections":
		var req domain.CreateConnectionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		conn := domain.Connection{
			ID:           "conn_1",
			PlatformType: req.PlatformType,
			Name:         req.Name,
			IsSandbox:    req.IsSandbox,
			Status:       domain.ConnectionStatusPending,
			CreatedAt:    "2026-01-01T00:00:00Z",
			UpdatedAt:    "2026-01-01T00:00:00Z",
		}
		f.conns = append(f.conns, conn)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(conn)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/test"):
		f.recordTest(strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/connections/"), "/test"))
		_, _ = w.Write([]byte(f.testBody))
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/connections/"):
		id := strings.TrimPrefix(r.URL.Path, "/api/connections/")
		for _, c := range f.conns {
			if c.ID == id {
				_ = json.NewEncoder(w).Encode(c)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"connection not found"}`))
	case r.Method == http.MethodDelete:
		f.conns = nil
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// recordTest stores the test outcome on the connection.
func (f *fakeBackend) recordTest(id string) {
	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal([]byte(f.testBody), &result)
	for i := range f.conns {
		if f.conns[i].ID != id {
			continue
		}
		if result.Success {
			f.conns[i].Status = domain.ConnectionStatusConnected
			f.conns[i].ErrorMessage = nil
			continue
		}
		msg := result.Message
		f.conns[i].Status = domain.ConnectionStatusError
		f.conns[i].ErrorMessage = &msg
	}
}

type forgetter struct {
	ids []string
}

func (f *forgetter) ForgetConnection(_ context.Context, id string) error {
	f.ids = append(f.ids, id)
	return nil
}

type recorder struct {
	entries []auditdomain.Entry
}

func (r *recorder) Record(_ context.Context, e auditdomain.Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newRegistry(backend adapters.Backend) *adapters.Registry {
	return adapters.NewRegistry(backend, maxio.NewFactory(), stripe.NewFactory(), zuora.NewFactory())
}

func newService(t *testing.T, testBody string) (*Service, *adapterstest.Backend, *forgetter, *recorder) {
	svc, backend, f, rec, _ := newServiceWithFake(t, testBody)
	return svc, backend, f, rec
}

func newServiceWithFake(t *testing.T, testBody string) (*Service, *adapterstest.Backend, *forgetter, *recorder, *fakeBackend) {
	t.Helper()
	fake := &fakeBackend{testBody: testBody}
	backend := adapterstest.New(t, fake.handle)
	f := &forgetter{}
	rec := &recorder{}
	return NewService(backend, newRegistry(backend), f, rec, clock.Fixed(now), zap.NewNop()), backend, f, rec, fake
}

func TestCreateWithFailingTestKeepsConnection(t *testing.T) {
	svc, backend, _, rec := newService(t, `{"success":false,"message":"Invalid API Key provided"}`)
	ctx := context.Background()

	conn, err := svc.Create(ctx, domain.CreateConnectionRequest{
		PlatformType: domain.PlatformStripe,
		Name:         "Stripe sandbox",
		IsSandbox:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionStatusError, conn.Status)
	require.NotNil(t, conn.ErrorMessage)
	assert.Equal(t, "Invalid API Key provided", *conn.ErrorMessage)
	assert.Nil(t, conn.LastSyncAt)

	reqs := backend.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/api/connections", reqs[0].Path)
	assert.Equal(t, "/api/connections/conn_1/test", reqs[1].Path)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "conn_1", list[0].ID)
	assert.True(t, list[0].IsSandbox)
	assert.Equal(t, domain.ConnectionStatusError, list[0].Status)
	require.NotNil(t, list[0].ErrorMessage)
	assert.Equal(t, "Invalid API Key provided", *list[0].ErrorMessage)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, auditdomain.ActionConnectionCreated, rec.entries[0].Action)
	assert.Equal(t, "error", rec.entries[0].Metadata["status"])
}

func TestCreateWithPassingTest(t *testing.T) {
	svc, _, _, _ := newService(t, `{"success":true}`)

	conn, err := svc.Create(context.Background(), domain.CreateConnectionRequest{
		PlatformType: domain.PlatformMaxio,
		Name:         "Acme",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionStatusConnected, conn.Status)
	assert.Nil(t, conn.ErrorMessage)
	require.NotNil(t, conn.LastSyncAt)
	assert.Equal(t, "2026-03-01T12:00:00Z", *conn.LastSyncAt)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, backend, _, _ := newService(t, `{"success":true}`)

	_, err := svc.Create(context.Background(), domain.CreateConnectionRequest{PlatformType: "chargebee"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, backend.Requests())
}

func TestListEmptyIsNotNil(t *testing.T) {
	backend := adapterstest.JSON(t, http.StatusOK, `null`)
	svc := NewService(backend, newRegistry(backend), &forgetter{}, nil, clock.Fixed(now), zap.NewNop())

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestRetest(t *testing.T) {
	svc, _, _, rec := newService(t, `{"success":true}`)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateConnectionRequest{PlatformType: domain.PlatformZuora, Name: "Z"})
	require.NoError(t, err)

	conn, err := svc.Test(ctx, "conn_1")
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionStatusConnected, conn.Status)
	require.Len(t, rec.entries, 2)
	assert.Equal(t, auditdomain.ActionConnectionTested, rec.entries[1].Action)

	_, err = svc.Test(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestRetestUnknownPlatformMarksError(t *testing.T) {
	svc, backend, _, rec, fake := newServiceWithFake(t, `{"success":true}`)
	fake.conns = []domain.Connection{{ID: "conn_9", PlatformType: "chargebee", Name: "Legacy", Status: domain.ConnectionStatusConnected}}

	conn, err := svc.Test(context.Background(), "conn_9")
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionStatusError, conn.Status)
	require.NotNil(t, conn.ErrorMessage)
	assert.Equal(t, "No adapter is available for this platform.", *conn.ErrorMessage)

	// Only the lookup reached the backend; no test call was made.
	require.Len(t, backend.Requests(), 1)
	assert.Equal(t, http.MethodGet, backend.Last().Method)
	require.Len(t, rec.entries, 1)
	assert.Equal(t, "error", rec.entries[0].Metadata["status"])
}

func TestDeleteForgetsCachedEntities(t *testing.T) {
	svc, backend, f, rec := newService(t, `{"success":true}`)

	require.NoError(t, svc.Delete(context.Background(), "conn_1"))
	assert.Equal(t, http.MethodDelete, backend.Last().Method)
	assert.Equal(t, "/api/connections/conn_1", backend.Last().Path)
	assert.Equal(t, []string{"conn_1"}, f.ids)
	require.Len(t, rec.entries, 1)
	assert.Equal(t, auditdomain.ActionConnectionDeleted, rec.entries[0].Action)

	assert.ErrorIs(t, svc.Delete(context.Background(), ""), domain.ErrInvalidID)
}

func TestTestMessage(t *testing.T) {
	assert.Equal(t, "Bad key", testMessage(&domain.UpstreamError{Status: 401, VendorMessage: "Bad key"}))
	assert.Equal(t, "No adapter is available for this platform.", testMessage(fmt.Errorf("%w: %q", adapters.ErrUnknownPlatform, "chargebee")))
	assert.Equal(t, "The billing backend could not be reached.", testMessage(&domain.NetworkError{Method: "POST", Path: "/x", Err: context.DeadlineExceeded}))
}
