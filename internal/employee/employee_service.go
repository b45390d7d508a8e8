package employee

import (
	"context"
	"errors"
	"time"

	employeeerrors "leavehub/internal/employee/errors"
	"leavehub/internal/rbac"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	GetAll(ctx context.Context, actorID string) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, actorID, id string) (EmployeeResponse, error)
	UpdateSelf(ctx context.Context, actorID string, req UpdateSelfRequest) (EmployeeResponse, error)
	Update(ctx context.Context, actorID, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Deactivate(ctx context.Context, actorID, id string) error

	// ResolveActor is the single role/department lookup the other services
	// use for authorization decisions. It reads exactly one row by id and
	// never consults the data it is used to protect.
	ResolveActor(ctx context.Context, actorID string) (*Employee, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) ResolveActor(ctx context.Context, actorID string) (*Employee, error) {
	if _, err := uuid.Parse(actorID); err != nil {
		return nil, employeeerrors.ErrInvalidEmployeeID
	}
	actor, err := s.repo.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employeeerrors.ErrEmployeeNotFound
		}
		return nil, err
	}
	if !actor.IsActive {
		return nil, employeeerrors.ErrEmployeeInactive
	}
	return actor, nil
}

func (s *service) GetAll(ctx context.Context, actorID string) ([]EmployeeResponse, error) {
	actor, err := s.ResolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var employees []Employee
	if rbac.Elevated(actor.Role) {
		employees, err = s.repo.FindAll(ctx)
	} else {
		employees, err = s.repo.FindAllByDepartment(ctx, actor.Department)
	}
	if err != nil {
		return nil, err
	}
	return mapToListResponse(employees), nil
}

func (s *service) GetByID(ctx context.Context, actorID, id string) (EmployeeResponse, error) {
	actor, err := s.ResolveActor(ctx, actorID)
	if err != nil {
		return EmployeeResponse{}, err
	}

	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return EmployeeResponse{}, err
	}

	if !canSee(actor, target) {
		return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
	}

	return mapToResponse(*target), nil
}

// canSee: self always, managers within their department, hr/admin anywhere.
func canSee(actor, target *Employee) bool {
	if actor.ID == target.ID {
		return true
	}
	if rbac.Elevated(actor.Role) {
		return true
	}
	return actor.Role == rbac.RoleManager && actor.Department == target.Department
}

func (s *service) UpdateSelf(ctx context.Context, actorID string, req UpdateSelfRequest) (EmployeeResponse, error) {
	var updated Employee
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		actor, err := qtx.FindByID(ctx, actorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return employeeerrors.ErrEmployeeNotFound
			}
			return err
		}

		actor.FullName = req.FullName
		actor.UpdatedAt = time.Now().UTC()
		actor.UpdatedBy = &actor.ID

		if err := qtx.Update(ctx, actor); err != nil {
			return err
		}
		updated = *actor
		return nil
	})
	if err != nil {
		return EmployeeResponse{}, err
	}

	s.logger.Info("employee self update", zap.String("employee_id", actorID))
	return mapToResponse(updated), nil
}

func (s *service) Update(ctx context.Context, actorID, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	actor, err := s.ResolveActor(ctx, actorID)
	if err != nil {
		return EmployeeResponse{}, err
	}

	if req.Role != "" {
		if !rbac.ValidRole(req.Role) {
			return EmployeeResponse{}, employeeerrors.ErrInvalidRole
		}
	}

	var updated Employee
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		target, err := qtx.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return employeeerrors.ErrEmployeeNotFound
			}
			return err
		}

		// HR/admin may edit anyone, but never their own role.
		if req.Role != "" && req.Role != target.Role && actor.ID == target.ID {
			return employeeerrors.ErrSelfRoleChange
		}

		target.FullName = req.FullName
		target.Department = req.Department
		if req.Role != "" {
			target.Role = req.Role
		}
		target.UpdatedAt = time.Now().UTC()
		target.UpdatedBy = &actor.ID

		if err := qtx.Update(ctx, target); err != nil {
			return err
		}
		updated = *target
		return nil
	})
	if err != nil {
		return EmployeeResponse{}, err
	}

	s.logger.Info("employee updated",
		zap.String("employee_id", id),
		zap.String("actor_id", actorID),
	)
	return mapToResponse(updated), nil
}

// Deactivate is the only removal path; employee rows are never hard-deleted.
func (s *service) Deactivate(ctx context.Context, actorID, id string) error {
	actor, err := s.ResolveActor(ctx, actorID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		target, err := qtx.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return employeeerrors.ErrEmployeeNotFound
			}
			return err
		}

		target.IsActive = false
		target.UpdatedAt = time.Now().UTC()
		target.UpdatedBy = &actor.ID

		return qtx.Update(ctx, target)
	})
	if err != nil {
		return err
	}

	s.logger.Info("employee deactivated",
		zap.String("employee_id", id),
		zap.String("actor_id", actorID),
	)
	return nil
}

func mapToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:         e.ID.String(),
		Email:      e.Email,
		FullName:   e.FullName,
		Role:       e.Role,
		Department: e.Department,
		IsActive:   e.IsActive,
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
	}
}

func mapToListResponse(employees []Employee) []EmployeeResponse {
	resp := make([]EmployeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = mapToResponse(e)
	}
	return resp
}
