package leave

import (
	"time"

	"github.com/google/uuid"
)

type Leave struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_employee_dates"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null"`

	StartDate time.Time `gorm:"type:date;not null;index:idx_leaves_employee_dates;check:chk_leaves_range,end_date >= start_date"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leaves_employee_dates"`
	TotalDays int       `gorm:"type:int;not null;default:1;check:chk_leaves_days,total_days > 0"`
	Reason    string    `gorm:"type:text"`

	Status     string     `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ApproverID *uuid.UUID `gorm:"type:uuid"`
	Comment    *string    `gorm:"type:text"`
	ApprovedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	UpdatedBy *uuid.UUID `gorm:"type:uuid"`
}

func (Leave) TableName() string {
	return "leaves"
}
