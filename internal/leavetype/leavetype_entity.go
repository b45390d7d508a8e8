package leavetype

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LeaveType struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string    `gorm:"type:text"`

	// Days granted per year when a balance row is seeded for this type.
	DefaultAllocationDays decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`
	// Days accrued per month; zero means the full allocation is granted upfront.
	AccrualRate decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`
	// Free-form accrual settings (carry-forward caps, proration rules).
	AccrualMeta []byte `gorm:"type:jsonb"`

	IsActive  bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveType) TableName() string {
	return "leave_types"
}
