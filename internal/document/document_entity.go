package document

import (
	"time"

	"github.com/google/uuid"
)

type LeaveDocument struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LeaveID    uuid.UUID `gorm:"type:uuid;not null;index"`
	UploaderID uuid.UUID `gorm:"type:uuid;not null"`

	FileName    string `gorm:"type:varchar(255);not null"`
	ObjectKey   string `gorm:"type:text;not null"`
	FileSize    int64  `gorm:"not null;check:chk_leave_documents_size,file_size > 0"`
	ContentType string `gorm:"type:varchar(120);not null"`

	CreatedAt time.Time
}

func (LeaveDocument) TableName() string {
	return "leave_documents"
}
