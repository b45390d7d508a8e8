package notification

import (
	"context"
	"fmt"
	"time"

	"leavehub/internal/employee"
	"leavehub/internal/events"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	GetMine(ctx context.Context, actorID string, limit int) ([]NotificationResponse, error)
	MarkRead(ctx context.Context, actorID, id string) error

	// Consumer-side fan-out handlers.
	HandleLeaveDecided(ctx context.Context, event events.LeaveDecidedEvent) error
	HandleCompanyDocumentPublished(ctx context.Context, event events.CompanyDocumentPublishedEvent) error
}

type service struct {
	repo         Repository
	employeeRepo employee.Repository
	logger       *zap.Logger
}

func NewService(repo Repository, employeeRepo employee.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, employeeRepo: employeeRepo, logger: l}
}

func (s *service) GetMine(ctx context.Context, actorID string, limit int) ([]NotificationResponse, error) {
	logs, err := s.repo.FindAllByEmployee(ctx, actorID, limit)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(logs), nil
}

func (s *service) MarkRead(ctx context.Context, actorID, id string) error {
	return s.repo.MarkRead(ctx, actorID, id)
}

func (s *service) HandleLeaveDecided(ctx context.Context, event events.LeaveDecidedEvent) error {
	employeeID, err := uuid.Parse(event.EmployeeID)
	if err != nil {
		return err
	}

	var refID *uuid.UUID
	if leaveID, err := uuid.Parse(event.LeaveID); err == nil {
		refID = &leaveID
	}

	n := &NotificationLog{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		Kind:       "leave_decided",
		Message: fmt.Sprintf("Your %s leave request (%s to %s) was %s",
			event.LeaveType, event.StartDate, event.EndDate, event.Status),
		RefID:     refID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	s.logger.Info("leave decision notification written",
		zap.String("leave_id", event.LeaveID),
		zap.String("employee_id", event.EmployeeID),
		zap.String("status", event.Status),
	)
	return nil
}

func (s *service) HandleCompanyDocumentPublished(ctx context.Context, event events.CompanyDocumentPublishedEvent) error {
	var audience []employee.Employee

	if event.AllStaff {
		all, err := s.employeeRepo.FindAll(ctx)
		if err != nil {
			return err
		}
		audience = all
	} else {
		for _, dept := range event.Departments {
			members, err := s.employeeRepo.FindAllByDepartment(ctx, dept)
			if err != nil {
				return err
			}
			audience = append(audience, members...)
		}
	}

	var refID *uuid.UUID
	if docID, err := uuid.Parse(event.DocumentID); err == nil {
		refID = &docID
	}

	now := time.Now().UTC()
	logs := make([]NotificationLog, 0, len(audience))
	seen := make(map[uuid.UUID]bool, len(audience))
	for _, e := range audience {
		if !e.IsActive || seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		logs = append(logs, NotificationLog{
			ID:         uuid.New(),
			EmployeeID: e.ID,
			Kind:       "company_document",
			Message:    fmt.Sprintf("New company document published: %s", event.Title),
			RefID:      refID,
			CreatedAt:  now,
		})
	}

	if err := s.repo.CreateBatch(ctx, logs); err != nil {
		return err
	}

	s.logger.Info("company document notifications written",
		zap.String("document_id", event.DocumentID),
		zap.Int("recipients", len(logs)),
	)
	return nil
}

type NotificationResponse struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	Message   string  `json:"message"`
	RefID     *string `json:"ref_id,omitempty"`
	ReadAt    *string `json:"read_at,omitempty"`
	CreatedAt string  `json:"created_at"`
}

func mapToResponse(n NotificationLog) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID.String(),
		Kind:      n.Kind,
		Message:   n.Message,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.RefID != nil {
		v := n.RefID.String()
		resp.RefID = &v
	}
	if n.ReadAt != nil {
		v := n.ReadAt.Format(time.RFC3339)
		resp.ReadAt = &v
	}
	return resp
}

func mapToListResponse(logs []NotificationLog) []NotificationResponse {
	resp := make([]NotificationResponse, len(logs))
	for i, n := range logs {
		resp[i] = mapToResponse(n)
	}
	return resp
}
