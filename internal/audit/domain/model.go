package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Actions recorded by the console.
const (
	ActionConnectionCreated = "connection.created"
	ActionConnectionTested  = "connection.tested"
	ActionConnectionDeleted = "connection.deleted"
	ActionEntityCreated     = "entity.created"
	ActionEntityUpdated     = "entity.updated"
	ActionEntityDeleted     = "entity.deleted"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// AuditLog is one successful console mutation.
type AuditLog struct {
	ID           snowflake.ID      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Action       string            `json:"action" gorm:"not null;index"`
	Platform     string            `json:"platform,omitempty"`
	ConnectionID string            `json:"connection_id,omitempty" gorm:"index"`
	TargetType   string            `json:"target_type" gorm:"not null"`
	TargetID     *string           `json:"target_id,omitempty"`
	Metadata     datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at" gorm:"not null;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Entry is what callers hand to Record.
type Entry struct {
	Action       string
	Platform     string
	ConnectionID string
	TargetType   string
	TargetID     string
	Metadata     map[string]any
}

type ListRequest struct {
	Limit        int
	Action       string
	ConnectionID string
}

type Repository interface {
	Insert(ctx context.Context, log *AuditLog) error
	List(ctx context.Context, req ListRequest) ([]AuditLog, error)
	Range(ctx context.Context, req ExportRequest) ([]AuditLog, error)
	// DeleteBefore removes entries created before cutoff and reports how many.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Recorder is the write side used by services that mutate state.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

type Service interface {
	Recorder
	List(ctx context.Context, req ListRequest) ([]AuditLog, error)
}
