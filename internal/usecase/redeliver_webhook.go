package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/consult-intake/internal/entity"
	"github.com/xavierca1/consult-intake/internal/infra/queue"
	"go.uber.org/zap"
)

const DefaultRedeliveryMaxAttempts = 3

var ErrRedeliveryExhausted = errors.New("webhook redelivery attempts exhausted")

type RedeliverWebhookUseCase struct {
	Submissions entity.SubmissionRepositoryInterface
	Webhook     WebhookDispatcher
	Publisher   RedeliveryPublisher
	Alerts      AlertSender
	Metrics     MetricsRecorder
	Log         *zap.Logger
	MaxAttempts int
	// Delay is multiplied by the attempt number for the next try.
	Delay time.Duration

	now func() time.Time
}

func NewRedeliverWebhookUseCase(
	submissions entity.SubmissionRepositoryInterface,
	webhook WebhookDispatcher,
	publisher RedeliveryPublisher,
	alerts AlertSender,
	metrics MetricsRecorder,
	log *zap.Logger,
	maxAttempts int,
	delay time.Duration,
) *RedeliverWebhookUseCase {
	if maxAttempts <= 0 {
		maxAttempts = DefaultRedeliveryMaxAttempts
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedeliverWebhookUseCase{
		Submissions: submissions,
		Webhook:     webhook,
		Publisher:   publisher,
		Alerts:      alerts,
		Metrics:     metricsOrNoop(metrics),
		Log:         log.Named("redeliver_webhook"),
		MaxAttempts: maxAttempts,
		Delay:       delay,
		now:         time.Now,
	}
}

// Execute re-posts a stored payload. A nil return means the message is settled,
// either delivered, already delivered elsewhere, or rescheduled.
func (uc *RedeliverWebhookUseCase) Execute(ctx context.Context, msg queue.RedeliveryMessage) error {
	log := uc.Log.With(zap.String("submission_id", msg.SubmissionID), zap.Int("attempt", msg.Attempt))

	current, err := uc.Submissions.FindBySubmissionID(ctx, msg.SubmissionID)
	switch {
	case errors.Is(err, entity.ErrSubmissionNotFound):
		log.Warn("submission no longer exists, dropping redelivery")
		return nil
	case err != nil:
		log.Warn("could not load submission, redelivering anyway", zap.Error(err))
	case current != nil && current.WebhookSent:
		log.Info("submission already delivered, skipping")
		return nil
	}

	executionID, err := uc.Webhook.Dispatch(ctx, msg.Payload)
	if err == nil {
		uc.Metrics.RecordDispatch("redelivered")
		log.Info("webhook redelivered", zap.String("execution_id", executionID))
		if err := uc.Submissions.MarkWebhookSent(ctx, msg.SubmissionID, uc.now()); err != nil {
			uc.Metrics.RecordStepFailure("status_update")
			log.Error("redelivered but status update failed", zap.Error(err))
		}
		return nil
	}

	uc.Metrics.RecordDispatch("failed")
	log.Warn("webhook redelivery failed", zap.Error(err))

	if msg.Attempt >= uc.MaxAttempts {
		uc.alertExhausted(ctx, msg, err)
		return fmt.Errorf("%w: %s after %d attempts: %v", ErrRedeliveryExhausted, msg.SubmissionID, msg.Attempt, err)
	}

	next := msg
	next.Attempt++
	next.LastError = err.Error()
	if err := uc.Publisher.PublishRedelivery(ctx, next, uc.Delay*time.Duration(next.Attempt)); err != nil {
		return fmt.Errorf("reschedule redelivery: %w", err)
	}
	return nil
}

func (uc *RedeliverWebhookUseCase) alertExhausted(ctx context.Context, msg queue.RedeliveryMessage, cause error) {
	if uc.Alerts == nil {
		return
	}
	p := msg.Payload
	alert := DeliveryFailureAlert{
		SubmissionID:   msg.SubmissionID,
		ClientName:     p.ClientName,
		Email:          p.Email,
		Phone:          p.Phone,
		PrimaryService: p.ServiceInterestedKey,
		Language:       p.Language,
		Attempt:        msg.Attempt,
		Reason:         cause.Error(),
		OccurredAt:     uc.now(),
	}
	if err := uc.Alerts.SendDeliveryFailure(ctx, alert); err != nil {
		uc.Log.Warn("failed to send exhaustion alert",
			zap.String("submission_id", msg.SubmissionID), zap.Error(err))
	}
}
