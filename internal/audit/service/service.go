package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/railzwaylabs/billinghub/internal/audit/domain"
	"github.com/railzwaylabs/billinghub/internal/clock"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var ErrInvalidAction = errors.New("invalid_action")

type Service struct {
	repo  auditdomain.Repository
	node  *snowflake.Node
	clock clock.Clock
	log   *zap.Logger
}

func NewService(repo auditdomain.Repository, node *snowflake.Node, clk clock.Clock, log *zap.Logger) auditdomain.Service {
	return &Service{
		repo:  repo,
		node:  node,
		clock: clk,
		log:   log.Named("audit"),
	}
}

func (s *Service) Record(ctx context.Context, entry auditdomain.Entry) error {
	if strings.TrimSpace(entry.Action) == "" {
		return ErrInvalidAction
	}

	row := &auditdomain.AuditLog{
		ID:           s.node.Generate(),
		Action:       entry.Action,
		Platform:     entry.Platform,
		ConnectionID: entry.ConnectionID,
		TargetType:   entry.TargetType,
		CreatedAt:    s.clock.Now(ctx),
	}
	if entry.TargetID != "" {
		id := entry.TargetID
		row.TargetID = &id
	}
	if len(entry.Metadata) > 0 {
		row.Metadata = datatypes.JSONMap(entry.Metadata)
	}

	if err := s.repo.Insert(ctx, row); err != nil {
		s.log.Error("failed to record audit log",
			zap.String("action", entry.Action),
			zap.String("target_type", entry.TargetType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListRequest) ([]auditdomain.AuditLog, error) {
	switch {
	case req.Limit <= 0:
		req.Limit = auditdomain.DefaultListLimit
	case req.Limit > auditdomain.MaxListLimit:
		req.Limit = auditdomain.MaxListLimit
	}
	return s.repo.List(ctx, req)
}
