package document

type DocumentResponse struct {
	ID          string `json:"id"`
	LeaveID     string `json:"leave_id"`
	UploaderID  string `json:"uploader_id"`
	FileName    string `json:"file_name"`
	FileSize    int64  `json:"file_size"`
	ContentType string `json:"content_type"`
	CreatedAt   string `json:"created_at"`
}
