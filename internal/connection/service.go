// Package connection manages vendor connections through the billing backend.
package connection

import (
	"context"
	"errors"
	"strings"

	"github.com/railzwaylabs/billinghub/internal/adapters"
	auditdomain "github.com/railzwaylabs/billinghub/internal/audit/domain"
	"github.com/railzwaylabs/billinghub/internal/clock"
	"github.com/railzwaylabs/billinghub/internal/domain"
	"github.com/railzwaylabs/billinghub/internal/transport"
	"go.uber.org/zap"
)

// Forgetter drops whatever was loaded under a connection.
type Forgetter interface {
	ForgetConnection(ctx context.Context, connectionID string) error
}

type Service struct {
	backend  adapters.Backend
	registry *adapters.Registry
	forget   Forgetter
	audit    auditdomain.Recorder
	clock    clock.Clock
	log      *zap.Logger
}

func NewService(backend adapters.Backend, registry *adapters.Registry, forget Forgetter, audit auditdomain.Recorder, clk clock.Clock, log *zap.Logger) *Service {
	return &Service{
		backend:  backend,
		registry: registry,
		forget:   forget,
		audit:    audit,
		clock:    clk,
		log:      log.Named("connection"),
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Connection, error) {
	var out []domain.Connection
	if err := s.backend.Get(ctx, transport.Path("api", "connections"), nil, &out); err != nil {
		return nil, err
	}
	return adapters.NonNil(out), nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Connection, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Connection{}, domain.ErrInvalidID
	}
	var out domain.Connection
	if err := s.backend.Get(ctx, transport.Path("api", "connections", id), nil, &out); err != nil {
		return domain.Connection{}, err
	}
	return out, nil
}

// Create stores the connection and then tests it. A failing test leaves
// the connection in error status; only the create call itself can fail.
func (s *Service) Create(ctx context.Context, req domain.CreateConnectionRequest) (domain.Connection, error) {
	if err := domain.Validate(req); err != nil {
		return domain.Connection{}, err
	}

	var conn domain.Connection
	if err := s.backend.Post(ctx, transport.Path("api", "connections"), req, &conn); err != nil {
		return domain.Connection{}, err
	}
	if conn.PlatformType == "" {
		conn.PlatformType = req.PlatformType
	}
	if conn.Status == "" {
		conn.Status = domain.ConnectionStatusPending
	}

	conn = s.apply(ctx, conn, s.test(ctx, conn))

	s.record(ctx, auditdomain.ActionConnectionCreated, conn)
	return conn, nil
}

// Test re-runs the connection test and reports the resulting state.
func (s *Service) Test(ctx context.Context, id string) (domain.Connection, error) {
	conn, err := s.Get(ctx, id)
	if err != nil {
		return domain.Connection{}, err
	}
	conn = s.apply(ctx, conn, s.test(ctx, conn))

	s.record(ctx, auditdomain.ActionConnectionTested, conn)
	return conn, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrInvalidID
	}
	if err := s.backend.Delete(ctx, transport.Path("api", "connections", id), nil); err != nil {
		return err
	}
	if err := s.forget.ForgetConnection(ctx, id); err != nil {
		s.log.Warn("failed to drop cached entities", zap.String("connection_id", id), zap.Error(err))
	}

	s.record(ctx, auditdomain.ActionConnectionDeleted, domain.Connection{ID: id})
	return nil
}

// test runs the connection test through the platform's adapter.
func (s *Service) test(ctx context.Context, conn domain.Connection) error {
	a, err := s.registry.Get(conn.PlatformType)
	if err != nil {
		return err
	}
	return a.TestConnection(ctx, conn.ID)
}

// apply folds a test outcome into the connection status.
func (s *Service) apply(ctx context.Context, conn domain.Connection, testErr error) domain.Connection {
	if testErr == nil {
		now := domain.FormatTime(s.clock.Now(ctx))
		conn.Status = domain.ConnectionStatusConnected
		conn.ErrorMessage = nil
		conn.LastSyncAt = &now
		return conn
	}

	msg := testMessage(testErr)
	conn.Status = domain.ConnectionStatusError
	conn.ErrorMessage = &msg
	s.log.Info("connection test failed",
		zap.String("connection_id", conn.ID),
		zap.String("platform", string(conn.PlatformType)),
		zap.Error(testErr),
	)
	return conn
}

func testMessage(err error) string {
	var failed *adapters.TestFailedError
	if errors.As(err, &failed) {
		return failed.Error()
	}
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) && upstream.VendorMessage != "" {
		return upstream.VendorMessage
	}
	if errors.Is(err, adapters.ErrUnknownPlatform) {
		return "No adapter is available for this platform."
	}
	if errors.Is(err, domain.ErrNetwork) {
		return "The billing backend could not be reached."
	}
	return err.Error()
}

func (s *Service) record(ctx context.Context, action string, conn domain.Connection) {
	if s.audit == nil {
		return
	}
	entry := auditdomain.Entry{
		Action:       action,
		Platform:     string(conn.PlatformType),
		ConnectionID: conn.ID,
		TargetType:   string(domain.KindConnection),
		TargetID:     conn.ID,
	}
	if conn.Status != "" {
		entry.Metadata = map[string]any{"status": string(conn.Status)}
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.log.Warn("audit record failed", zap.String("action", action), zap.Error(err))
	}
}
