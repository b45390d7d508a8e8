package balance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Balance is keyed (employee, leave type, year); one ledger row per tuple.
type Balance struct {
	EmployeeID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Year        int       `gorm:"primaryKey"`

	AllocatedDays      decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`
	UsedDays           decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`
	CarriedForwardDays decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Balance) TableName() string {
	return "leave_balances"
}

// Available is allocated + carried_forward - used. The schema does not forbid
// a negative result; callers must not assume it is non-negative.
func (b Balance) Available() decimal.Decimal {
	return b.AllocatedDays.Add(b.CarriedForwardDays).Sub(b.UsedDays)
}
