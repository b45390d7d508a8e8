package document

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, d *LeaveDocument) error
	FindByID(ctx context.Context, id string) (*LeaveDocument, error)
	FindAllByLeave(ctx context.Context, leaveID string) ([]LeaveDocument, error)
	Delete(ctx context.Context, id string) error
	DeleteAllByLeave(ctx context.Context, leaveID string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, d *LeaveDocument) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveDocument, error) {
	var d LeaveDocument
	err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) FindAllByLeave(ctx context.Context, leaveID string) ([]LeaveDocument, error) {
	var docs []LeaveDocument
	err := r.db.WithContext(ctx).
		Where("leave_id = ?", leaveID).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&LeaveDocument{}, "id = ?", id).Error
}

func (r *repository) DeleteAllByLeave(ctx context.Context, leaveID string) error {
	return r.db.WithContext(ctx).Delete(&LeaveDocument{}, "leave_id = ?", leaveID).Error
}
