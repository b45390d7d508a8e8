package companydoc

import (
	"time"

	"github.com/google/uuid"
)

type CompanyDocument struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title       string    `gorm:"type:varchar(200);not null"`
	Description string    `gorm:"type:text"`

	FileName    string `gorm:"type:varchar(255);not null"`
	ObjectKey   string `gorm:"type:text;not null"`
	FileSize    int64  `gorm:"not null"`
	ContentType string `gorm:"type:varchar(120);not null"`

	PublishedBy uuid.UUID `gorm:"type:uuid;not null"`
	AllStaff    bool      `gorm:"not null;default:false"`

	Targets []CompanyDocumentTarget `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CompanyDocument) TableName() string {
	return "company_documents"
}

// CompanyDocumentTarget scopes a document to one department. A document with
// AllStaff set carries no target rows.
type CompanyDocumentTarget struct {
	DocumentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Department string    `gorm:"type:varchar(100);primaryKey"`
}

func (CompanyDocumentTarget) TableName() string {
	return "company_document_targets"
}
