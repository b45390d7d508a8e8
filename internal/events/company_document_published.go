package events

const CompanyDocumentPublishedTopic = "company-document.published"

// CompanyDocumentPublishedEvent fans out to notification logs for every
// employee selected by the document's notifier rows.
type CompanyDocumentPublishedEvent struct {
	DocumentID  string   `json:"document_id"`
	Title       string   `json:"title"`
	PublishedBy string   `json:"published_by"`
	Departments []string `json:"departments,omitempty"`
	AllStaff    bool     `json:"all_staff"`
}
