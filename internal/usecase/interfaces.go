package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/consult-intake/internal/entity"
	"github.com/xavierca1/consult-intake/internal/infra/queue"
)

// WebhookDispatcher posts a payload to the automation webhook. executionID is empty
// when the receiver did not report one.
type WebhookDispatcher interface {
	Dispatch(ctx context.Context, payload entity.WebhookPayload) (executionID string, err error)
}

type RedeliveryPublisher interface {
	PublishRedelivery(ctx context.Context, msg queue.RedeliveryMessage, delay time.Duration) error
}

type DeliveryFailureAlert struct {
	SubmissionID   string
	ClientName     string
	Email          string
	Phone          string
	PrimaryService string
	Language       string
	Attempt        int
	Reason         string
	OccurredAt     time.Time
}

type AlertSender interface {
	SendDeliveryFailure(ctx context.Context, alert DeliveryFailureAlert) error
}

// MetricsRecorder receives business counters. All use cases accept a nil recorder.
type MetricsRecorder interface {
	RecordSubmission(verdict string)
	RecordDispatch(result string)
	RecordStepFailure(step string)
}

type StatsCache interface {
	GetStats(ctx context.Context) (*entity.ConsultationStats, bool, error)
	SetStats(ctx context.Context, stats *entity.ConsultationStats) error
}

type noopMetrics struct{}

func (noopMetrics) RecordSubmission(string)  {}
func (noopMetrics) RecordDispatch(string)    {}
func (noopMetrics) RecordStepFailure(string) {}

func metricsOrNoop(m MetricsRecorder) MetricsRecorder {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
