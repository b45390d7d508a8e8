package leavetype

import (
	"context"
	"errors"

	leavetypeerrors "leavehub/internal/leavetype/errors"
	"leavehub/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	GetAll(ctx context.Context, activeOnly bool) ([]LeaveTypeResponse, error)
	GetByID(ctx context.Context, id string) (LeaveTypeResponse, error)
	Update(ctx context.Context, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db     *gorm.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavetype.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavetype.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func parseDays(allocation, accrual string) (decimal.Decimal, decimal.Decimal, error) {
	alloc, err := decimal.NewFromString(allocation)
	if err != nil || alloc.IsNegative() {
		return decimal.Zero, decimal.Zero, leavetypeerrors.ErrInvalidDays
	}

	rate := decimal.Zero
	if accrual != "" {
		rate, err = decimal.NewFromString(accrual)
		if err != nil || rate.IsNegative() {
			return decimal.Zero, decimal.Zero, leavetypeerrors.ErrInvalidDays
		}
	}
	return alloc, rate, nil
}

func (s *service) Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error) {
	alloc, rate, err := parseDays(req.DefaultAllocationDays, req.AccrualRate)
	if err != nil {
		return LeaveTypeResponse{}, err
	}

	lt := &LeaveType{
		ID:                    uuid.New(),
		Name:                  req.Name,
		Description:           req.Description,
		DefaultAllocationDays: alloc,
		AccrualRate:           rate,
		AccrualMeta:           req.AccrualMeta,
		IsActive:              true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, lt)
	})
	if err != nil {
		return LeaveTypeResponse{}, apperror.FromDB(err)
	}

	s.logger.Info("leave type created", zap.String("leave_type_id", lt.ID.String()), zap.String("name", lt.Name))
	return mapToResponse(*lt), nil
}

func (s *service) GetAll(ctx context.Context, activeOnly bool) ([]LeaveTypeResponse, error) {
	var (
		types []LeaveType
		err   error
	)
	if activeOnly {
		types, err = s.repo.FindAllActive(ctx)
	} else {
		types, err = s.repo.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	return mapToListResponse(types), nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveTypeResponse, error) {
	lt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return LeaveTypeResponse{}, err
	}
	return mapToResponse(*lt), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error) {
	alloc, rate, err := parseDays(req.DefaultAllocationDays, req.AccrualRate)
	if err != nil {
		return LeaveTypeResponse{}, err
	}

	var updated LeaveType
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		lt, err := qtx.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leavetypeerrors.ErrLeaveTypeNotFound
			}
			return err
		}

		lt.Name = req.Name
		lt.Description = req.Description
		lt.DefaultAllocationDays = alloc
		lt.AccrualRate = rate
		if req.AccrualMeta != nil {
			lt.AccrualMeta = req.AccrualMeta
		}
		if req.IsActive != nil {
			lt.IsActive = *req.IsActive
		}

		if err := qtx.Update(ctx, lt); err != nil {
			return err
		}
		updated = *lt
		return nil
	})
	if err != nil {
		return LeaveTypeResponse{}, err
	}
	return mapToResponse(updated), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		// FK violation from referencing leaves/balances surfaces as CONFLICT.
		return apperror.FromDB(err)
	}
	return nil
}

func mapToResponse(lt LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:                    lt.ID.String(),
		Name:                  lt.Name,
		Description:           lt.Description,
		DefaultAllocationDays: lt.DefaultAllocationDays.String(),
		AccrualRate:           lt.AccrualRate.String(),
		AccrualMeta:           lt.AccrualMeta,
		IsActive:              lt.IsActive,
	}
}

func mapToListResponse(types []LeaveType) []LeaveTypeResponse {
	resp := make([]LeaveTypeResponse, len(types))
	for i, lt := range types {
		resp[i] = mapToResponse(lt)
	}
	return resp
}
