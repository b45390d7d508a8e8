package document

import (
	"context"
	"errors"
	"io"
	"time"

	documenterrors "leavehub/internal/document/errors"
	"leavehub/internal/employee"
	"leavehub/internal/leave"
	leaveerrors "leavehub/internal/leave/errors"
	"leavehub/internal/rbac"
	"leavehub/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Upload(ctx context.Context, actorID, leaveID, fileName, contentType string, size int64, r io.Reader) (DocumentResponse, error)
	ListByLeave(ctx context.Context, actorID, leaveID string) ([]DocumentResponse, error)
	Download(ctx context.Context, actorID, id string) (DocumentResponse, io.ReadCloser, error)
	Delete(ctx context.Context, actorID, id string) error
}

type service struct {
	db        *gorm.DB
	repo      Repository
	leaveRepo leave.Repository
	resolver  employee.Service
	store     storage.ObjectStore
	logger    *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	leaveRepo leave.Repository,
	resolver employee.Service,
	store storage.ObjectStore,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("document.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("document.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		leaveRepo: leaveRepo,
		resolver:  resolver,
		store:     store,
		logger:    l,
	}
}

func (s *service) Upload(ctx context.Context, actorID, leaveID, fileName, contentType string, size int64, r io.Reader) (DocumentResponse, error) {
	actor, err := s.resolver.ResolveActor(ctx, actorID)
	if err != nil {
		return DocumentResponse{}, err
	}

	l, err := s.findLeave(ctx, leaveID)
	if err != nil {
		return DocumentResponse{}, err
	}
	if l.EmployeeID != actor.ID {
		return DocumentResponse{}, leaveerrors.ErrNotRequester
	}
	if l.Status != leave.StatusPending {
		return DocumentResponse{}, documenterrors.ErrLeaveNotPending
	}

	// Size and MIME rules are checked before any bytes hit the store.
	if err := storage.ValidateObject(storage.BucketLeaveDocuments, size, contentType); err != nil {
		return DocumentResponse{}, err
	}

	key := storage.ObjectKey(actor.ID.String(), l.ID.String(), fileName)
	if err := s.store.Put(ctx, storage.BucketLeaveDocuments, key, r, size, contentType); err != nil {
		s.logger.Error("document object write failed",
			zap.String("leave_id", leaveID),
			zap.String("key", key),
			zap.Error(err),
		)
		return DocumentResponse{}, err
	}

	doc := &LeaveDocument{
		ID:          uuid.New(),
		LeaveID:     l.ID,
		UploaderID:  actor.ID,
		FileName:    storage.SanitizeFileName(fileName),
		ObjectKey:   key,
		FileSize:    size,
		ContentType: contentType,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		// The row never existed, so the orphan object is removed best effort.
		if cleanupErr := s.store.Delete(ctx, storage.BucketLeaveDocuments, key); cleanupErr != nil {
			s.logger.Warn("orphan object cleanup failed",
				zap.String("key", key),
				zap.Error(cleanupErr),
			)
		}
		return DocumentResponse{}, err
	}

	s.logger.Info("document uploaded",
		zap.String("document_id", doc.ID.String()),
		zap.String("leave_id", leaveID),
		zap.Int64("size", size),
	)
	return mapToResponse(*doc), nil
}

func (s *service) ListByLeave(ctx context.Context, actorID, leaveID string) ([]DocumentResponse, error) {
	actor, err := s.resolver.ResolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	l, err := s.findLeave(ctx, leaveID)
	if err != nil {
		return nil, err
	}
	if err := s.canReadLeave(ctx, actor, l); err != nil {
		return nil, err
	}

	docs, err := s.repo.FindAllByLeave(ctx, leaveID)
	if err != nil {
		return nil, err
	}
	resp := make([]DocumentResponse, len(docs))
	for i, d := range docs {
		resp[i] = mapToResponse(d)
	}
	return resp, nil
}

func (s *service) Download(ctx context.Context, actorID, id string) (DocumentResponse, io.ReadCloser, error) {
	actor, err := s.resolver.ResolveActor(ctx, actorID)
	if err != nil {
		return DocumentResponse{}, nil, err
	}

	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DocumentResponse{}, nil, documenterrors.ErrDocumentNotFound
		}
		return DocumentResponse{}, nil, err
	}

	l, err := s.findLeave(ctx, doc.LeaveID.String())
	if err != nil {
		return DocumentResponse{}, nil, err
	}
	if err := s.canReadLeave(ctx, actor, l); err != nil {
		return DocumentResponse{}, nil, err
	}

	rc, err := s.store.Get(ctx, storage.BucketLeaveDocuments, doc.ObjectKey)
	if err != nil {
		return DocumentResponse{}, nil, err
	}
	return mapToResponse(*doc), rc, nil
}

func (s *service) Delete(ctx context.Context, actorID, id string) error {
	actor, err := s.resolver.ResolveActor(ctx, actorID)
	if err != nil {
		return err
	}

	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return documenterrors.ErrDocumentNotFound
		}
		return err
	}

	if !rbac.Elevated(actor.Role) {
		if doc.UploaderID != actor.ID {
			return documenterrors.ErrNotUploader
		}
		l, err := s.findLeave(ctx, doc.LeaveID.String())
		if err != nil {
			return err
		}
		if l.Status != leave.StatusPending {
			return documenterrors.ErrLeaveNotPending
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, storage.BucketLeaveDocuments, doc.ObjectKey); err != nil {
		s.logger.Warn("stored object removal failed after row delete",
			zap.String("document_id", id),
			zap.String("key", doc.ObjectKey),
			zap.Error(err),
		)
	}

	s.logger.Info("document deleted", zap.String("document_id", id))
	return nil
}

func (s *service) findLeave(ctx context.Context, leaveID string) (*leave.Leave, error) {
	l, err := s.leaveRepo.FindByID(ctx, leaveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		return nil, err
	}
	return l, nil
}

// Visibility follows the parent leave: owner, same-department manager, hr/admin.
func (s *service) canReadLeave(ctx context.Context, actor *employee.Employee, l *leave.Leave) error {
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

func mapToResponse(d LeaveDocument) DocumentResponse {
	return DocumentResponse{
		ID:          d.ID.String(),
		LeaveID:     d.LeaveID.String(),
		UploaderID:  d.UploaderID.String(),
		FileName:    d.FileName,
		FileSize:    d.FileSize,
		ContentType: d.ContentType,
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
	}
}
