package leave

type CreateLeaveRequest struct {
	LeaveTypeID string `json:"leave_type_id" binding:"required,uuid"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	Reason      string `json:"reason"`
}

type UpdateLeaveRequest struct {
	LeaveTypeID string `json:"leave_type_id" binding:"required,uuid"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	Reason      string `json:"reason"`
}

type RejectLeaveRequest struct {
	Comment string `json:"comment" binding:"required"`
}

type ApproveLeaveRequest struct {
	Comment string `json:"comment"`
}

type LeaveResponse struct {
	ID          string  `json:"id"`
	EmployeeID  string  `json:"employee_id"`
	LeaveTypeID string  `json:"leave_type_id"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	TotalDays   int     `json:"total_days"`
	Reason      string  `json:"reason"`
	Status      string  `json:"status"`
	ApproverID  *string `json:"approver_id,omitempty"`
	Comment     *string `json:"comment,omitempty"`
	ApprovedAt  *string `json:"approved_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}
