package notification

import (
	"time"

	"github.com/google/uuid"
)

type NotificationLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Kind       string     `gorm:"type:varchar(50);not null"` // leave_decided, company_document
	Message    string     `gorm:"type:text;not null"`
	RefID      *uuid.UUID `gorm:"type:uuid"` // the leave or document this points at
	ReadAt     *time.Time
	CreatedAt  time.Time
}

func (NotificationLog) TableName() string {
	return "notification_logs"
}
