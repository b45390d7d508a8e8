package stats

type CountByKey struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

type Summary struct {
	EmployeesByRole       []CountByKey `json:"employees_by_role"`
	EmployeesByDepartment []CountByKey `json:"employees_by_department"`
	LeavesByType          []CountByKey `json:"leaves_by_type"`
	LeavesByMonth         []CountByKey `json:"leaves_by_month"`

	TotalApproved            int64   `json:"total_approved"`
	TotalDaysTaken           int64   `json:"total_days_taken"`
	MeanApprovalLatencyHours float64 `json:"mean_approval_latency_hours"`
	PendingOver48h           int64   `json:"pending_over_48h"`

	GeneratedAt string `json:"generated_at"`
}
