package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	StatusInitializing = "initializing"
	StatusActive       = "active"
)

var ErrStateNotFound = errors.New("schema_state_not_found")

// State is the single row naming the schema the migrate command last activated.
type State struct {
	ID            bool       `gorm:"column:id;primaryKey"`
	Status        string     `gorm:"column:status"`
	SchemaVersion string     `gorm:"column:schema_version"`
	Checksum      *string    `gorm:"column:checksum"`
	ActivatedAt   *time.Time `gorm:"column:activated_at"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
}

func (State) TableName() string {
	return "system_bootstrap_state"
}

func activate(ctx context.Context, conn *gorm.DB, schema Schema, now time.Time) error {
	checksum := schema.Checksum
	row := State{
		ID:            true,
		Status:        StatusActive,
		SchemaVersion: schema.VersionString(),
		Checksum:      &checksum,
		ActivatedAt:   &now,
		CreatedAt:     now,
	}
	err := conn.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "schema_version", "checksum", "activated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("activate schema state: %w", err)
	}
	return nil
}

// LoadState reads the schema state with status and version normalized.
func LoadState(ctx context.Context, conn *gorm.DB) (*State, error) {
	var state State
	result := conn.WithContext(ctx).Where("id = TRUE").Limit(1).Find(&state)
	if result.Error != nil {
		return nil, fmt.Errorf("load schema state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrStateNotFound
	}

	state.Status = strings.ToLower(strings.TrimSpace(state.Status))
	state.SchemaVersion = strings.TrimSpace(state.SchemaVersion)
	if state.Checksum != nil {
		if trimmed := strings.TrimSpace(*state.Checksum); trimmed != "" {
			state.Checksum = &trimmed
		} else {
			state.Checksum = nil
		}
	}
	return &state, nil
}
