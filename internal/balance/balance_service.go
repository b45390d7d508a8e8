package balance

import (
	"context"
	"errors"
	"time"

	"leavehub/internal/employee"
	"leavehub/internal/leavetype"
	"leavehub/internal/rbac"
	"leavehub/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	// GetAvailable treats a missing ledger row as zero in all three columns.
	GetAvailable(ctx context.Context, employeeID, leaveTypeID string, year int) (decimal.Decimal, error)
	GetMyBalances(ctx context.Context, actorID string) ([]BalanceResponse, error)
	GetEmployeeBalances(ctx context.Context, actorID, employeeID string) ([]BalanceResponse, error)

	// Onboard seeds one ledger row per active leave type for the current
	// year, inside the caller's transaction.
	Onboard(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID, types []leavetype.LeaveType) error
}

type service struct {
	db       *gorm.DB
	repo     Repository
	resolver employee.Service
	logger   *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, resolver employee.Service, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{db: db, repo: repo, resolver: resolver, logger: l}
}

func (s *service) GetAvailable(ctx context.Context, employeeID, leaveTypeID string, year int) (decimal.Decimal, error) {
	b, err := s.repo.Find(ctx, employeeID, leaveTypeID, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return b.Available(), nil
}

func (s *service) GetMyBalances(ctx context.Context, actorID string) ([]BalanceResponse, error) {
	balances, err := s.repo.FindAllByEmployee(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(balances), nil
}

func (s *service) GetEmployeeBalances(ctx context.Context, actorID, employeeID string) ([]BalanceResponse, error) {
	if actorID != employeeID {
		actor, err := s.resolver.ResolveActor(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !rbac.Elevated(actor.Role) {
			target, err := s.resolver.ResolveActor(ctx, employeeID)
			if err != nil {
				return nil, err
			}
			if actor.Role != rbac.RoleManager || actor.Department != target.Department {
				return nil, apperror.ErrForbidden
			}
		}
	}

	balances, err := s.repo.FindAllByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(balances), nil
}

func (s *service) Onboard(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID, types []leavetype.LeaveType) error {
	qtx := s.repo.WithTx(tx)
	year := time.Now().UTC().Year()

	for _, lt := range types {
		b := &Balance{
			EmployeeID:    employeeID,
			LeaveTypeID:   lt.ID,
			Year:          year,
			AllocatedDays: lt.DefaultAllocationDays,
		}
		if err := qtx.Seed(ctx, b); err != nil {
			return err
		}
	}

	s.logger.Info("balances seeded",
		zap.String("employee_id", employeeID.String()),
		zap.Int("leave_types", len(types)),
		zap.Int("year", year),
	)
	return nil
}

func mapToResponse(b Balance) BalanceResponse {
	return BalanceResponse{
		EmployeeID:         b.EmployeeID.String(),
		LeaveTypeID:        b.LeaveTypeID.String(),
		Year:               b.Year,
		AllocatedDays:      b.AllocatedDays.String(),
		UsedDays:           b.UsedDays.String(),
		CarriedForwardDays: b.CarriedForwardDays.String(),
		AvailableDays:      b.Available().String(),
	}
}

func mapToListResponse(balances []Balance) []BalanceResponse {
	resp := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		resp[i] = mapToResponse(b)
	}
	return resp
}
