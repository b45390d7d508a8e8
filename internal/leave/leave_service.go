package leave

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"leavehub/internal/balance"
	"leavehub/internal/employee"
	"leavehub/internal/events"
	leaveerrors "leavehub/internal/leave/errors"
	"leavehub/internal/leavetype"
	leavetypeerrors "leavehub/internal/leavetype/errors"
	"leavehub/internal/messaging/kafka"
	"leavehub/internal/rbac"
	"leavehub/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

// StatsNotifier is a local interface; the statistics refresher satisfies it.
type StatsNotifier interface {
	MarkDirty()
}

type Service interface {
	Create(ctx context.Context, actorID string, req CreateLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context, actorID string) ([]LeaveResponse, error)
	GetByID(ctx context.Context, actorID, id string) (LeaveResponse, error)
	Update(ctx context.Context, actorID, id string, req UpdateLeaveRequest) (LeaveResponse, error)
	Approve(ctx context.Context, actorID, id, comment string) (LeaveResponse, error)
	Reject(ctx context.Context, actorID, id, comment string) (LeaveResponse, error)
	Cancel(ctx context.Context, actorID, id string) (LeaveResponse, error)
	Delete(ctx context.Context, actorID, id string) error
}

type service struct {
	db          *gorm.DB
	repo        Repository
	typeRepo    leavetype.Repository
	balanceRepo balance.Repository
	resolver    employee.Service
	outbox      kafka.OutboxRepository
	stats       StatsNotifier
	logger      *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	typeRepo leavetype.Repository,
	balanceRepo balance.Repository,
	resolver employee.Service,
	outbox kafka.OutboxRepository,
	stats StatsNotifier,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		typeRepo:    typeRepo,
		balanceRepo: balanceRepo,
		resolver:    resolver,
		outbox:      outbox,
		stats:       stats,
		logger:      l,
	}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("create leave requested",
		zap.String("actor_id", actorID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	actor, err := s.resolver.ResolveActor(ctx, actorID)
	if err != nil {
		return LeaveResponse{}, err
	}

	typeID, startDate, endDate, err := validateCreateRequest(req.LeaveTypeID, req.StartDate, req.EndDate)
	if err != nil {
		s.logger.Warn("create leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	var created Leave
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		lt, err := s.typeRepo.WithTx(tx).FindByID(ctx, typeID.String())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leavetypeerrors.ErrLeaveTypeNotFound
			}
			return err
		}
		if !lt.IsActive {
			return leavetypeerrors.ErrLeaveTypeInactive
		}

		overlap, err := qtx.HasOverlappingPeriod(ctx, actor.ID.String(), startDate, endDate, nil)
		if err != nil {
			return err
		}
		if overlap {
			return leaveerrors.ErrLeaveOverlap
		}

		totalDays := int(endDate.Sub(startDate).Hours()/24) + 1
		l := &Leave{
			ID:          uuid.New(),
			EmployeeID:  actor.ID,
			LeaveTypeID: typeID,
			StartDate:   startDate,
			EndDate:     endDate,
			TotalDays:   totalDays,
			Reason:      req.Reason,
			Status:      StatusPending,
			UpdatedBy:   &actor.ID,
		}

		if err := qtx.Create(ctx, l); err != nil {
			return err
		}
		created = *l
		return nil
	})
	if err != nil {
		if errors.Is(err, leaveerrors.ErrLeaveOverlap) {
			s.logger.Warn("create leave overlap detected",
				zap.String("employee_id", actor.ID.String()),
				zap.String("start_date", req.StartDate),
				zap.String("end_date", req.EndDate),
			)
		} else {
			s.logger.Error("create leave failed", zap.Error(err))
		}
		return LeaveResponse{}, err
	}

	s.stats.MarkDirty()
	s.logger.Info("create leave success",
		zap.String("leave_id", created.ID.String()),
		zap.String("employee_id", actor.ID.String()),
	)
	return mapToResponse(created), nil
}

func (s *service) GetAll(ctx context.Context, actorID string) ([]LeaveResponse, error) {
	actor, err := s.resolver.ResolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var leaves []Leave
	switch {
	case rbac.Elevated(actor.Role):
		leaves, err = s.repo.FindAll(ctx)
	case actor.Role == rbac.RoleManager:
		leaves, err = s.repo.FindAllByDepartment(ctx, actor.Department)
	default:
		leaves, err = s.repo.FindAllByEmployee(ctx, actor.ID.String())
	}
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetByID(ctx context.Context, actorID, id string) (LeaveResponse, error) {
	actor, err := s.resolver.ResolveActor(ctx, actorID)
	if err != nil {
		return LeaveResponse{}, err
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}

	if err := s.canRead(ctx, actor, l); err != nil {
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

// canRead: owner, same-department manager, or hr/admin. A hidden row reads as
// not found so existence is not leaked.
func (s *service) canRead(ctx context.Context, actor *employee.Employee, l *Leave) error {
	if actor.ID == l.EmployeeID || rbac.Elevated(actor.Role) {
		return nil
	}
	if actor.Role == rbac.RoleManager {
		requester, err := s.resolver.ResolveActor(ctx, l.EmployeeID.String())
		if err != nil {
			return err
		}
		if requester.Department == actor.Department {
			return nil
		}
	}
	return leaveerrors.ErrLeaveNotFound
}

func (s *service) Update(ctx context.Context, actorID, id string, req UpdateLeaveRequest) (LeaveResponse, error) {
	actor, err := s.resolver.ResolveActor(ctx, actorID)
	if err != nil {
		return LeaveResponse{}, err
	}

	typeID, startDate, endDate, err := validateCreateRequest(req.LeaveTypeID, req.StartDate, req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}

	var updated Leave
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		l, err := qtx.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leaveerrors.ErrLeaveNotFound
			}
			return err
		}
		if l.EmployeeID != actor.ID {
			return leaveerrors.ErrNotRequester
		}
		if l.Status != StatusPending {
			return leaveerrors.ErrNotPending
		}

		lt, err := s.typeRepo.WithTx(tx).FindByID(ctx, typeID.String())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leavetypeerrors.ErrLeaveTypeNotFound
			}
			return err
		}
		if !lt.IsActive {
			return leavetypeerrors.ErrLeaveTypeInactive
		}

		overlap, err := qtx.HasOverlappingPeriod(ctx, actor.ID.String(), startDate, endDate, &id)
		if err != nil {
			return err
		}
		if overlap {
			return leaveerrors.ErrLeaveOverlap
		}

		l.LeaveTypeID = typeID
		l.StartDate = startDate
		l.EndDate = endDate
		l.TotalDays = int(endDate.Sub(startDate).Hours()/24) + 1
		l.Reason = req.Reason
		l.UpdatedBy = &actor.ID

		if err := qtx.Update(ctx, l); err != nil {
			return err
		}
		updated = *l
		return nil
	})
	if err != nil {
		return LeaveResponse{}, err
	}

	s.stats.MarkDirty()
	s.logger.Info("update leave success", zap.String("leave_id", id))
	return mapToResponse(updated), nil
}

func (s *service) Approve(ctx context.Context, actorID, id, comment string) (LeaveResponse, error) {
	return s.decide(ctx, actorID, id, StatusApproved, comment)
}

func (s *service) Reject(ctx context.Context, actorID, id, comment string) (LeaveResponse, error) {
	if comment == "" {
		return LeaveResponse{}, leaveerrors.ErrCommentRequired
	}
	return s.decide(ctx, actorID, id, StatusRejected, comment)
}

// decide runs the approve/reject transition. Approval and the balance debit
// commit in the same transaction so the ledger can never drift from the
// request status; the pending-only guard makes a second approval impossible.
func (s *service) decide(ctx context.Context, actorID, id, targetStatus, comment string) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	actor, err := s.resolver.ResolveActor(ctx, actorID)
	if err != nil {
		return LeaveResponse{}, err
	}

	var decided Leave
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		l, err := qtx.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leaveerrors.ErrLeaveNotFound
			}
			return err
		}
		if l.Status != StatusPending {
			return leaveerrors.ErrNotPending
		}

		if !rbac.Elevated(actor.Role) {
			if actor.Role != rbac.RoleManager {
				return leaveerrors.ErrNotAuthorizedToDecide
			}
			requester, err := s.resolver.ResolveActor(ctx, l.EmployeeID.String())
			if err != nil {
				return err
			}
			if requester.Department != actor.Department {
				return leaveerrors.ErrNotAuthorizedToDecide
			}
		}

		now := time.Now().UTC()
		l.Status = targetStatus
		l.ApproverID = &actor.ID
		l.ApprovedAt = &now
		l.UpdatedBy = &actor.ID
		if comment != "" {
			l.Comment = &comment
		}

		if targetStatus == StatusApproved {
			// Debit year-of-start-date; the upsert creates a zero-allocated
			// row when onboarding never seeded one.
			days := decimal.NewFromInt(int64(l.TotalDays))
			b, err := s.balanceRepo.WithTx(tx).IncrementUsed(
				ctx, l.EmployeeID.String(), l.LeaveTypeID.String(), l.StartDate.Year(), days)
			if err != nil {
				return err
			}
			if b.Available().IsNegative() {
				log.Warn("balance went negative on approval",
					zap.String("leave_id", l.ID.String()),
					zap.String("employee_id", l.EmployeeID.String()),
					zap.String("available", b.Available().String()),
				)
			}
		}

		if err := qtx.Update(ctx, l); err != nil {
			return err
		}

		if err := s.emitDecided(ctx, tx, l); err != nil {
			return err
		}

		decided = *l
		return nil
	})
	if err != nil {
		log.Warn("leave decision failed",
			zap.String("leave_id", id),
			zap.String("target_status", targetStatus),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	s.stats.MarkDirty()
	log.Info("leave decision success",
		zap.String("leave_id", id),
		zap.String("status", targetStatus),
		zap.String("decider_id", actorID),
	)
	return mapToResponse(decided), nil
}

func (s *service) emitDecided(ctx context.Context, tx *gorm.DB, l *Leave) error {
	typeName := l.LeaveTypeID.String()
	if lt, err := s.typeRepo.WithTx(tx).FindByID(ctx, l.LeaveTypeID.String()); err == nil {
		typeName = lt.Name
	}

	payload, err := json.Marshal(events.LeaveDecidedEvent{
		LeaveID:    l.ID.String(),
		EmployeeID: l.EmployeeID.String(),
		DeciderID:  l.ApproverID.String(),
		Status:     l.Status,
		LeaveType:  typeName,
		StartDate:  l.StartDate.Format("2006-01-02"),
		EndDate:    l.EndDate.Format("2006-01-02"),
		TotalDays:  l.TotalDays,
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave",
		AggregateID:   l.ID.String(),
		EventType:     "leave_decided",
		Topic:         events.LeaveDecidedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) Cancel(ctx context.Context, actorID, id string) (LeaveResponse, error) {
	actor, err := s.resolver.ResolveActor(ctx, actorID)
	if err != nil {
		return LeaveResponse{}, err
	}

	var cancelled Leave
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		l, err := qtx.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leaveerrors.ErrLeaveNotFound
			}
			return err
		}
		if l.EmployeeID != actor.ID {
			return leaveerrors.ErrNotRequester
		}
		if l.Status != StatusPending {
			return leaveerrors.ErrNotPending
		}

		// Cancellation never touches the ledger: only approval debits it,
		// and a pending request has not been approved yet.
		l.Status = StatusCancelled
		l.UpdatedBy = &actor.ID

		if err := qtx.Update(ctx, l); err != nil {
			return err
		}
		cancelled = *l
		return nil
	})
	if err != nil {
		return LeaveResponse{}, err
	}

	s.stats.MarkDirty()
	s.logger.Info("leave cancelled", zap.String("leave_id", id))
	return mapToResponse(cancelled), nil
}

func (s *service) Delete(ctx context.Context, actorID, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.stats.MarkDirty()
	s.logger.Info("leave deleted", zap.String("leave_id", id), zap.String("actor_id", actorID))
	return nil
}

func validateCreateRequest(leaveTypeID, start, end string) (uuid.UUID, time.Time, time.Time, error) {
	typeID, err := uuid.Parse(leaveTypeID)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, leaveerrors.ErrInvalidLeaveTypeID
	}
	startDate, err := parseDate(start)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, err
	}
	if startDate.After(endDate) {
		return uuid.Nil, time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return typeID, startDate, endDate, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:          l.ID.String(),
		EmployeeID:  l.EmployeeID.String(),
		LeaveTypeID: l.LeaveTypeID.String(),
		StartDate:   l.StartDate.Format("2006-01-02"),
		EndDate:     l.EndDate.Format("2006-01-02"),
		TotalDays:   l.TotalDays,
		Reason:      l.Reason,
		Status:      l.Status,
		Comment:     l.Comment,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
	}
	if l.ApproverID != nil {
		v := l.ApproverID.String()
		resp.ApproverID = &v
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
