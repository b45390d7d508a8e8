package companydoc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	companydocerrors "leavehub/internal/companydoc/errors"
	"leavehub/internal/employee"
	"leavehub/internal/events"
	"leavehub/internal/messaging/kafka"
	"leavehub/internal/rbac"
	"leavehub/internal/shared/contextutil"
	"leavehub/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Publish(ctx context.Context, actorID string, req PublishRequest, fileName, contentType string, size int64, r io.Reader) (CompanyDocumentResponse, error)
	AddNotifiers(ctx context.Context, actorID, id string, req AddNotifiersRequest) (CompanyDocumentResponse, error)
	GetAll(ctx context.Context, actorID string) ([]CompanyDocumentResponse, error)
	Download(ctx context.Context, actorID, id string) (CompanyDocumentResponse, io.ReadCloser, error)
	Delete(ctx context.Context, actorID, id string) error
}

type service struct {
	db       *gorm.DB
	repo     Repository
	resolver employee.Service
	store    storage.ObjectStore
	outbox   kafka.OutboxRepository
	logger   *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	resolver employee.Service,
	store storage.ObjectStore,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("companydoc.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("companydoc.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		resolver: resolver,
		store:    store,
		outbox:   outbox,
		logger:   l,
	}
}

// Publish stores the file, then commits the document, its targets and the
// fan-out event in one transaction. The consumer turns the event into
// notification logs.
func (s *service) Publish(ctx context.Context, actorID string, req PublishRequest, fileName, contentType string, size int64, r io.Reader) (CompanyDocumentResponse, error) {
	actor, err := s.resolver.ResolveActor(ctx, actorID)
	if err != nil {
		return CompanyDocumentResponse{}, err
	}

	departments := dedupe(req.Departments)
	if !req.AllStaff && len(departments) == 0 {
		return CompanyDocumentResponse{}, companydocerrors.ErrNoAudience
	}

	if err := storage.ValidateObject(storage.BucketCompanyDocuments, size, contentType); err != nil {
		return CompanyDocumentResponse{}, err
	}

	docID := uuid.New()
	key := storage.ObjectKey(actor.ID.String(), docID.String(), fileName)
	if err := s.store.Put(ctx, storage.BucketCompanyDocuments, key, r, size, contentType); err != nil {
		return CompanyDocumentResponse{}, err
	}

	doc := &CompanyDocument{
		ID:          docID,
		Title:       req.Title,
		Description: req.Description,
		FileName:    storage.SanitizeFileName(fileName),
		ObjectKey:   key,
		FileSize:    size,
		ContentType: contentType,
		PublishedBy: actor.ID,
		AllStaff:    req.AllStaff,
	}
	if !req.AllStaff {
		for _, d := range departments {
			doc.Targets = append(doc.Targets, CompanyDocumentTarget{
				DocumentID: docID,
				Department: d,
			})
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, doc); err != nil {
			return err
		}

		payload, err := json.Marshal(events.CompanyDocumentPublishedEvent{
			DocumentID:  docID.String(),
			Title:       doc.Title,
			PublishedBy: actor.ID.String(),
			Departments: departments,
			AllStaff:    doc.AllStaff,
		})
		if err != nil {
			return err
		}

		return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.New().String(),
			RequestID:     contextutil.GetRequestID(ctx),
			AggregateType: "company_document",
			AggregateID:   docID.String(),
			EventType:     "company_document_published",
			Topic:         events.CompanyDocumentPublishedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		})
	})
	if err != nil {
		if cleanupErr := s.store.Delete(ctx, storage.BucketCompanyDocuments, key); cleanupErr != nil {
			s.logger.Warn("orphan object cleanup failed",
				zap.String("key", key),
				zap.Error(cleanupErr),
			)
		}
		return CompanyDocumentResponse{}, err
	}

	s.logger.Info("company document published",
		zap.String("document_id", docID.String()),
		zap.Bool("all_staff", doc.AllStaff),
		zap.Int("departments", len(departments)),
	)
	return mapToResponse(*doc), nil
}

// AddNotifiers widens the audience of an already published document. Only
// the newly reached audience is notified, so existing recipients do not get
// a second log entry.
func (s *service) AddNotifiers(ctx context.Context, actorID, id string, req AddNotifiersRequest) (CompanyDocumentResponse, error) {
	actor, err := s.resolver.ResolveActor(ctx, actorID)
	if err != nil {
		return CompanyDocumentResponse{}, err
	}

	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CompanyDocumentResponse{}, companydocerrors.ErrCompanyDocumentNotFound
		}
		return CompanyDocumentResponse{}, err
	}

	if doc.AllStaff {
		// Already everyone; nothing can widen further.
		return mapToResponse(*doc), nil
	}

	existing := make(map[string]struct{}, len(doc.Targets))
	for _, t := range doc.Targets {
		existing[t.Department] = struct{}{}
	}
	var added []string
	for _, d := range dedupe(req.Departments) {
		if _, ok := existing[d]; !ok {
			added = append(added, d)
		}
	}
	if !req.AllStaff && len(added) == 0 {
		if len(req.Departments) == 0 {
			return CompanyDocumentResponse{}, companydocerrors.ErrNoAudience
		}
		return mapToResponse(*doc), nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if req.AllStaff {
			if err := txRepo.SetAllStaff(ctx, id); err != nil {
				return err
			}
		} else {
			targets := make([]CompanyDocumentTarget, 0, len(added))
			for _, d := range added {
				targets = append(targets, CompanyDocumentTarget{DocumentID: doc.ID, Department: d})
			}
			if err := txRepo.AddTargets(ctx, targets); err != nil {
				return err
			}
		}

		payload, err := json.Marshal(events.CompanyDocumentPublishedEvent{
			DocumentID:  doc.ID.String(),
			Title:       doc.Title,
			PublishedBy: actor.ID.String(),
			Departments: added,
			AllStaff:    req.AllStaff,
		})
		if err != nil {
			return err
		}

		return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.New().String(),
			RequestID:     contextutil.GetRequestID(ctx),
			AggregateType: "company_document",
			AggregateID:   doc.ID.String(),
			EventType:     "company_document_published",
			Topic:         events.CompanyDocumentPublishedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		})
	})
	if err != nil {
		return CompanyDocumentResponse{}, err
	}

	if req.AllStaff {
		doc.AllStaff = true
	} else {
		for _, d := range added {
			doc.Targets = append(doc.Targets, CompanyDocumentTarget{DocumentID: doc.ID, Department: d})
		}
	}

	s.logger.Info("company document audience widened",
		zap.String("document_id", doc.ID.String()),
		zap.Bool("all_staff", req.AllStaff),
		zap.Strings("departments", added),
	)
	return mapToResponse(*doc), nil
}

func (s *service) GetAll(ctx context.Context, actorID string) ([]CompanyDocumentResponse, error) {
	actor, err := s.resolver.ResolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var docs []CompanyDocument
	if rbac.Elevated(actor.Role) {
		docs, err = s.repo.FindAll(ctx)
	} else {
		docs, err = s.repo.FindVisibleToDepartment(ctx, actor.Department)
	}
	if err != nil {
		return nil, err
	}

	resp := make([]CompanyDocumentResponse, len(docs))
	for i, d := range docs {
		resp[i] = mapToResponse(d)
	}
	return resp, nil
}

func (s *service) Download(ctx context.Context, actorID, id string) (CompanyDocumentResponse, io.ReadCloser, error) {
	actor, err := s.resolver.ResolveActor(ctx, actorID)
	if err != nil {
		return CompanyDocumentResponse{}, nil, err
	}

	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CompanyDocumentResponse{}, nil, companydocerrors.ErrCompanyDocumentNotFound
		}
		return CompanyDocumentResponse{}, nil, err
	}

	if !rbac.Elevated(actor.Role) && !visibleTo(doc, actor.Department) {
		return CompanyDocumentResponse{}, nil, companydocerrors.ErrCompanyDocumentNotFound
	}

	rc, err := s.store.Get(ctx, storage.BucketCompanyDocuments, doc.ObjectKey)
	if err != nil {
		return CompanyDocumentResponse{}, nil, err
	}
	return mapToResponse(*doc), rc, nil
}

func (s *service) Delete(ctx context.Context, actorID, id string) error {
	if _, err := s.resolver.ResolveActor(ctx, actorID); err != nil {
		return err
	}

	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return companydocerrors.ErrCompanyDocumentNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, storage.BucketCompanyDocuments, doc.ObjectKey); err != nil {
		s.logger.Warn("stored object removal failed after row delete",
			zap.String("document_id", id),
			zap.Error(err),
		)
	}

	s.logger.Info("company document deleted", zap.String("document_id", id))
	return nil
}

func visibleTo(doc *CompanyDocument, department string) bool {
	if doc.AllStaff {
		return true
	}
	for _, t := range doc.Targets {
		if t.Department == department {
			return true
		}
	}
	return false
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func mapToResponse(d CompanyDocument) CompanyDocumentResponse {
	resp := CompanyDocumentResponse{
		ID:          d.ID.String(),
		Title:       d.Title,
		Description: d.Description,
		FileName:    d.FileName,
		FileSize:    d.FileSize,
		ContentType: d.ContentType,
		PublishedBy: d.PublishedBy.String(),
		AllStaff:    d.AllStaff,
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
	}
	for _, t := range d.Targets {
		resp.Departments = append(resp.Departments, t.Department)
	}
	return resp
}
