package employee

import (
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID     *uuid.UUID `gorm:"type:uuid;uniqueIndex"` // auth subject, set at signup
	Email      string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName   string     `gorm:"type:varchar(255);not null"`
	Role       string     `gorm:"type:varchar(20);not null;default:'employee';index"`
	Department string     `gorm:"type:varchar(100);index"`
	IsActive   bool       `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
	UpdatedBy *uuid.UUID `gorm:"type:uuid"`
}
