package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/xavierca1/consult-intake/internal/entity"
	"github.com/xavierca1/consult-intake/internal/infra/queue"
)

// MockSubmissionRepository
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Create(ctx context.Context, s *entity.ConsultationSubmission) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSubmissionRepository) FindRecentByEmail(ctx context.Context, email string, since time.Time) (*entity.ConsultationSubmission, error) {
	args := m.Called(ctx, email, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ConsultationSubmission), args.Error(1)
}

func (m *MockSubmissionRepository) FindBySubmissionID(ctx context.Context, submissionID string) (*entity.ConsultationSubmission, error) {
	args := m.Called(ctx, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ConsultationSubmission), args.Error(1)
}

func (m *MockSubmissionRepository) MarkWebhookSent(ctx context.Context, submissionID string, at time.Time) error {
	args := m.Called(ctx, submissionID, at)
	return args.Error(0)
}

func (m *MockSubmissionRepository) Stats(ctx context.Context, since time.Time) (*entity.ConsultationStats, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ConsultationStats), args.Error(1)
}

func (m *MockSubmissionRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubmissionRepository) ListStalePending(ctx context.Context, before time.Time, limit int) ([]*entity.ConsultationSubmission, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.ConsultationSubmission), args.Error(1)
}

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

// MockWebhook
type MockWebhook struct {
	mock.Mock
}

func (m *MockWebhook) Dispatch(ctx context.Context, payload entity.WebhookPayload) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

// MockRedeliveryPublisher
type MockRedeliveryPublisher struct {
	mock.Mock
}

func (m *MockRedeliveryPublisher) PublishRedelivery(ctx context.Context, msg queue.RedeliveryMessage, delay time.Duration) error {
	args := m.Called(ctx, msg, delay)
	return args.Error(0)
}

// MockAlertSender
type MockAlertSender struct {
	mock.Mock
}

func (m *MockAlertSender) SendDeliveryFailure(ctx context.Context, alert DeliveryFailureAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

// MockStatsCache
type MockStatsCache struct {
	mock.Mock
}

func (m *MockStatsCache) GetStats(ctx context.Context) (*entity.ConsultationStats, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entity.ConsultationStats), args.Bool(1), args.Error(2)
}

func (m *MockStatsCache) SetStats(ctx context.Context, stats *entity.ConsultationStats) error {
	args := m.Called(ctx, stats)
	return args.Error(0)
}

type recordingMetrics struct {
	mu          sync.Mutex
	submissions []string
	dispatches  []string
	failures    []string
}

func (r *recordingMetrics) RecordSubmission(verdict string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions = append(r.submissions, verdict)
}

func (r *recordingMetrics) RecordDispatch(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatches = append(r.dispatches, result)
}

func (r *recordingMetrics) RecordStepFailure(step string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, step)
}
