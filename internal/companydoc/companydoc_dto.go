package companydoc

type PublishRequest struct {
	Title       string   `form:"title" binding:"required,max=200"`
	Description string   `form:"description"`
	AllStaff    bool     `form:"all_staff"`
	Departments []string `form:"departments"`
}

type AddNotifiersRequest struct {
	AllStaff    bool     `json:"all_staff"`
	Departments []string `json:"departments"`
}

type CompanyDocumentResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	FileName    string   `json:"file_name"`
	FileSize    int64    `json:"file_size"`
	ContentType string   `json:"content_type"`
	PublishedBy string   `json:"published_by"`
	AllStaff    bool     `json:"all_staff"`
	Departments []string `json:"departments,omitempty"`
	CreatedAt   string   `json:"created_at"`
}
