package companydoc

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, d *CompanyDocument) error
	FindByID(ctx context.Context, id string) (*CompanyDocument, error)
	FindAll(ctx context.Context) ([]CompanyDocument, error)
	FindVisibleToDepartment(ctx context.Context, department string) ([]CompanyDocument, error)
	AddTargets(ctx context.Context, targets []CompanyDocumentTarget) error
	SetAllStaff(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
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

func (r *repository) Create(ctx context.Context, d *CompanyDocument) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*CompanyDocument, error) {
	var d CompanyDocument
	err := r.db.WithContext(ctx).
		Preload("Targets").
		First(&d, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) FindAll(ctx context.Context) ([]CompanyDocument, error) {
	var docs []CompanyDocument
	err := r.db.WithContext(ctx).
		Preload("Targets").
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *repository) FindVisibleToDepartment(ctx context.Context, department string) ([]CompanyDocument, error) {
	var docs []CompanyDocument
	err := r.db.WithContext(ctx).
		Preload("Targets").
		Where(`all_staff = TRUE OR id IN (
			SELECT document_id FROM company_document_targets WHERE department = ?
		)`, department).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *repository) AddTargets(ctx context.Context, targets []CompanyDocumentTarget) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&targets).Error
}

func (r *repository) SetAllStaff(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&CompanyDocument{}).
		Where("id = ?", id).
		Update("all_staff", true).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&CompanyDocument{}, "id = ?", id).Error
}
