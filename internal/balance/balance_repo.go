package balance

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context, employeeID, leaveTypeID string, year int) (*Balance, error)
	FindAllByEmployee(ctx context.Context, employeeID string) ([]Balance, error)
	Seed(ctx context.Context, b *Balance) error
	IncrementUsed(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) (*Balance, error)
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

func (r *repository) Find(ctx context.Context, employeeID, leaveTypeID string, year int) (*Balance, error) {
	var b Balance
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND leave_type_id = ? AND year = ?", employeeID, leaveTypeID, year).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) FindAllByEmployee(ctx context.Context, employeeID string) ([]Balance, error) {
	var balances []Balance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("year DESC").
		Find(&balances).Error
	return balances, err
}

// Seed inserts an onboarding row and leaves an existing one untouched.
func (r *repository) Seed(ctx context.Context, b *Balance) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO leave_balances (employee_id, leave_type_id, year, allocated_days, used_days, carried_forward_days, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, 0, now(), now())
		ON CONFLICT (employee_id, leave_type_id, year) DO NOTHING
	`, b.EmployeeID, b.LeaveTypeID, b.Year, b.AllocatedDays).Error
}

// IncrementUsed is a single atomic UPSERT so concurrent approvals for the
// same tuple serialize on the row; a missing ledger row is created on the fly
// with zero allocation.
func (r *repository) IncrementUsed(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) (*Balance, error) {
	var b Balance
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO leave_balances (employee_id, leave_type_id, year, allocated_days, used_days, carried_forward_days, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, 0, now(), now())
		ON CONFLICT (employee_id, leave_type_id, year) DO UPDATE
		SET used_days = leave_balances.used_days + EXCLUDED.used_days, updated_at = now()
		RETURNING *
	`, employeeID, leaveTypeID, year, days).Scan(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}
