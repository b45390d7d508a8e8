package notification

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, n *NotificationLog) error
	CreateBatch(ctx context.Context, logs []NotificationLog) error
	FindAllByEmployee(ctx context.Context, employeeID string, limit int) ([]NotificationLog, error)
	MarkRead(ctx context.Context, employeeID, id string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *NotificationLog) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *repository) CreateBatch(ctx context.Context, logs []NotificationLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(logs, 100).Error
}

func (r *repository) FindAllByEmployee(ctx context.Context, employeeID string, limit int) ([]NotificationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []NotificationLog
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *repository) MarkRead(ctx context.Context, employeeID, id string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&NotificationLog{}).
		Where("id = ? AND employee_id = ?", id, employeeID).
		Update("read_at", &now).Error
}
