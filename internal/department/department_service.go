package department

import (
	"context"
	"errors"
	"net/http"

	"leavehub/internal/shared/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errDepartmentNotFound = apperror.New(
	apperror.CodeNotFound,
	"department not found",
	http.StatusNotFound,
)

type Service interface {
	Create(ctx context.Context, req CreateDepartmentRequest) (DepartmentResponse, error)
	GetAll(ctx context.Context) ([]DepartmentResponse, error)
	GetByID(ctx context.Context, id string) (DepartmentResponse, error)
	Update(ctx context.Context, id string, req UpdateDepartmentRequest) (DepartmentResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db   *gorm.DB
	repo Repository
}

func NewService(db *gorm.DB, repo Repository) Service {
	return &service{db: db, repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateDepartmentRequest) (DepartmentResponse, error) {
	dept := &Department{
		ID:   uuid.New(),
		Name: req.Name,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, dept)
	})
	if err != nil {
		return DepartmentResponse{}, apperror.FromDB(err)
	}

	return mapToResponse(*dept), nil
}

func (s *service) GetAll(ctx context.Context) ([]DepartmentResponse, error) {
	depts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(depts), nil
}

func (s *service) GetByID(ctx context.Context, id string) (DepartmentResponse, error) {
	dept, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DepartmentResponse{}, errDepartmentNotFound
		}
		return DepartmentResponse{}, err
	}
	return mapToResponse(*dept), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateDepartmentRequest) (DepartmentResponse, error) {
	var updated Department
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		dept, err := qtx.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errDepartmentNotFound
			}
			return err
		}

		dept.Name = req.Name
		if err := qtx.Update(ctx, dept); err != nil {
			return err
		}
		updated = *dept
		return nil
	})
	if err != nil {
		return DepartmentResponse{}, err
	}
	return mapToResponse(updated), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
}

func mapToResponse(d Department) DepartmentResponse {
	return DepartmentResponse{
		ID:   d.ID.String(),
		Name: d.Name,
	}
}

func mapToListResponse(depts []Department) []DepartmentResponse {
	resp := make([]DepartmentResponse, len(depts))
	for i, d := range depts {
		resp[i] = mapToResponse(d)
	}
	return resp
}
