package leavetype

import "encoding/json"

type CreateLeaveTypeRequest struct {
	Name                  string          `json:"name" binding:"required"`
	Description           string          `json:"description"`
	DefaultAllocationDays string          `json:"default_allocation_days" binding:"required"`
	AccrualRate           string          `json:"accrual_rate"`
	AccrualMeta           json.RawMessage `json:"accrual_meta"`
}

type UpdateLeaveTypeRequest struct {
	Name                  string          `json:"name" binding:"required"`
	Description           string          `json:"description"`
	DefaultAllocationDays string          `json:"default_allocation_days" binding:"required"`
	AccrualRate           string          `json:"accrual_rate"`
	AccrualMeta           json.RawMessage `json:"accrual_meta"`
	IsActive              *bool           `json:"is_active"`
}

type LeaveTypeResponse struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	Description           string          `json:"description"`
	DefaultAllocationDays string          `json:"default_allocation_days"`
	AccrualRate           string          `json:"accrual_rate"`
	AccrualMeta           json.RawMessage `json:"accrual_meta,omitempty"`
	IsActive              bool            `json:"is_active"`
}
