package stats

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	ComputeSummary(ctx context.Context) (*Summary, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ComputeSummary runs the aggregate queries directly against the base
// tables. Results are cached by the service layer, so these reads stay off
// the request path.
func (r *repository) ComputeSummary(ctx context.Context) (*Summary, error) {
	s := &Summary{GeneratedAt: time.Now().UTC().Format(time.RFC3339)}

	db := r.db.WithContext(ctx)

	if err := db.Raw(`
		SELECT role AS key, COUNT(*) AS count
		FROM employees
		WHERE is_active = TRUE
		GROUP BY role
		ORDER BY role
	`).Scan(&s.EmployeesByRole).Error; err != nil {
		return nil, err
	}

	if err := db.Raw(`
		SELECT department AS key, COUNT(*) AS count
		FROM employees
		WHERE is_active = TRUE
		GROUP BY department
		ORDER BY department
	`).Scan(&s.EmployeesByDepartment).Error; err != nil {
		return nil, err
	}

	if err := db.Raw(`
		SELECT lt.name AS key, COUNT(*) AS count
		FROM leaves l
		JOIN leave_types lt ON lt.id = l.leave_type_id
		GROUP BY lt.name
		ORDER BY lt.name
	`).Scan(&s.LeavesByType).Error; err != nil {
		return nil, err
	}

	if err := db.Raw(`
		SELECT to_char(start_date, 'YYYY-MM') AS key, COUNT(*) AS count
		FROM leaves
		WHERE start_date >= date_trunc('month', NOW()) - INTERVAL '11 months'
		GROUP BY 1
		ORDER BY 1
	`).Scan(&s.LeavesByMonth).Error; err != nil {
		return nil, err
	}

	var totals struct {
		TotalApproved  int64
		TotalDaysTaken int64
		MeanLatency    float64
	}
	if err := db.Raw(`
		SELECT
			COUNT(*) AS total_approved,
			COALESCE(SUM(total_days), 0) AS total_days_taken,
			COALESCE(AVG(EXTRACT(EPOCH FROM approved_at - created_at)) / 3600, 0) AS mean_latency
		FROM leaves
		WHERE status = 'APPROVED'
	`).Scan(&totals).Error; err != nil {
		return nil, err
	}
	s.TotalApproved = totals.TotalApproved
	s.TotalDaysTaken = totals.TotalDaysTaken
	s.MeanApprovalLatencyHours = totals.MeanLatency

	if err := db.Raw(`
		SELECT COUNT(*) AS count
		FROM leaves
		WHERE status = 'PENDING' AND created_at < NOW() - INTERVAL '48 hours'
	`).Scan(&s.PendingOver48h).Error; err != nil {
		return nil, err
	}

	return s, nil
}
