package events

const LeaveDecidedTopic = "leave.decided"

// LeaveDecidedEvent is emitted through the outbox when a leave request
// reaches approved or rejected.
type LeaveDecidedEvent struct {
	LeaveID    string `json:"leave_id"`
	EmployeeID string `json:"employee_id"`
	DeciderID  string `json:"decider_id"`
	Status     string `json:"status"`
	LeaveType  string `json:"leave_type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	TotalDays  int    `json:"total_days"`
}
