package repository

import (
	"context"
	"time"

	"github.com/railzwaylabs/billinghub/internal/audit/domain"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, log *domain.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// List returns the newest entries first.
func (r *Repository) List(ctx context.Context, req domain.ListRequest) ([]domain.AuditLog, error) {
	query := r.db.WithContext(ctx).Model(&domain.AuditLog{})
	if req.Action != "" {
		query = query.Where("action = ?", req.Action)
	}
	if req.ConnectionID != "" {
		query = query.Where("connection_id = ?", req.ConnectionID)
	}

	logs := []domain.AuditLog{}
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(req.Limit).
		Find(&logs).Error
	return logs, err
}

// Range returns entries in [StartDate, EndDate) oldest first.
func (r *Repository) Range(ctx context.Context, req domain.ExportRequest) ([]domain.AuditLog, error) {
	end := req.EndDate
	if end.IsZero() {
		end = time.Now().Add(time.Second)
	}
	query := r.db.WithContext(ctx).Model(&domain.AuditLog{}).
		Where("created_at >= ? AND created_at < ?", req.StartDate.UTC(), end.UTC())
	if req.ConnectionID != "" {
		query = query.Where("connection_id = ?", req.ConnectionID)
	}
	if len(req.Actions) > 0 {
		query = query.Where("action IN ?", req.Actions)
	}

	var logs []domain.AuditLog
	err := query.Order("created_at ASC").Order("id ASC").Find(&logs).Error
	return logs, err
}

func (r *Repository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.AuditLog{}, "created_at < ?", cutoff.UTC())
	return result.RowsAffected, result.Error
}
