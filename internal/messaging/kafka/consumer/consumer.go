package consumer

import (
	"context"
	"encoding/json"

	"leavehub/internal/events"
	"leavehub/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeLeaveDecisions writes a notification log row for every approved or
// rejected leave event. Messages that fail to decode are committed and
// dropped; handler failures leave the message uncommitted for redelivery.
func ConsumeLeaveDecisions(
	ctx context.Context,
	reader *kafkago.Reader,
	notificationService notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_decisions")
	log.Info("leave decisions consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave decisions consumer stopped")
				return
			}
			log.Error("fetch leave decision message failed", zap.Error(err))
			continue
		}

		var event events.LeaveDecidedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave_decided event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := notificationService.HandleLeaveDecided(ctx, event); err != nil {
			log.Error("handle leave_decided event failed",
				zap.String("leave_id", event.LeaveID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave decision message failed", zap.Error(err))
		}
	}
}

// ConsumeCompanyDocuments fans a published company document out to the
// notification logs of its audience.
func ConsumeCompanyDocuments(
	ctx context.Context,
	reader *kafkago.Reader,
	notificationService notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.company_documents")
	log.Info("company documents consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("company documents consumer stopped")
				return
			}
			log.Error("fetch company document message failed", zap.Error(err))
			continue
		}

		var event events.CompanyDocumentPublishedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode company_document_published event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := notificationService.HandleCompanyDocumentPublished(ctx, event); err != nil {
			log.Error("handle company_document_published event failed",
				zap.String("document_id", event.DocumentID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit company document message failed", zap.Error(err))
		}
	}
}
