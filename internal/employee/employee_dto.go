package employee

type UpdateEmployeeRequest struct {
	FullName   string `json:"full_name" binding:"required"`
	Department string `json:"department"`
	Role       string `json:"role" binding:"omitempty,oneof=employee manager hr admin"`
}

type UpdateSelfRequest struct {
	FullName string `json:"full_name" binding:"required"`
}

type EmployeeResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  string `json:"created_at"`
}
