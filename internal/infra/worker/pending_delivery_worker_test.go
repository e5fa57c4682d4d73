package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/consult-intake/internal/entity"
	"go.uber.org/zap"
)

type MockPendingLister struct {
	mock.Mock
}

func (m *MockPendingLister) ListStalePending(ctx context.Context, before time.Time, limit int) ([]*entity.ConsultationSubmission, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.ConsultationSubmission), args.Error(1)
}

type fakeGauge struct {
	value float64
	set   bool
}

func (g *fakeGauge) Set(v float64) {
	g.value = v
	g.set = true
}

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestSweep_ReportsStaleSubmissions(t *testing.T) {
	repo := new(MockPendingLister)
	gauge := &fakeGauge{}
	w := NewPendingDeliveryWorker(repo, gauge, zap.NewNop(), "", 0)
	w.now = func() time.Time { return now }

	stale := []*entity.ConsultationSubmission{
		entity.NewConsultationSubmission("sub_1_a", []string{"vat"}, now.Add(-2*time.Hour)),
		entity.NewConsultationSubmission("sub_2_b", []string{"audit"}, now.Add(-45*time.Minute)),
	}
	repo.On("ListStalePending", mock.Anything, now.Add(-DefaultStaleAfter), sweepLimit).Return(stale, nil)

	n := w.Sweep(context.Background())

	assert.Equal(t, 2, n)
	assert.True(t, gauge.set)
	assert.Equal(t, float64(2), gauge.value)
	repo.AssertExpectations(t)
}

func TestSweep_EmptyResetsGauge(t *testing.T) {
	repo := new(MockPendingLister)
	gauge := &fakeGauge{value: 7}
	w := NewPendingDeliveryWorker(repo, gauge, zap.NewNop(), "@every 1m", 10*time.Minute)
	w.now = func() time.Time { return now }

	repo.On("ListStalePending", mock.Anything, now.Add(-10*time.Minute), sweepLimit).
		Return([]*entity.ConsultationSubmission{}, nil)

	assert.Equal(t, 0, w.Sweep(context.Background()))
	assert.Equal(t, float64(0), gauge.value)
}

func TestSweep_QueryFailureLeavesGauge(t *testing.T) {
	repo := new(MockPendingLister)
	gauge := &fakeGauge{}
	w := NewPendingDeliveryWorker(repo, gauge, nil, "", 0)

	repo.On("ListStalePending", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	assert.Equal(t, -1, w.Sweep(context.Background()))
	assert.False(t, gauge.set)
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	w := NewPendingDeliveryWorker(new(MockPendingLister), nil, zap.NewNop(), "not a schedule", 0)

	err := w.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a schedule")
}

func TestStart_StopsWithContext(t *testing.T) {
	repo := new(MockPendingLister)
	repo.On("ListStalePending", mock.Anything, mock.Anything, mock.Anything).
		Return([]*entity.ConsultationSubmission{}, nil)
	w := NewPendingDeliveryWorker(repo, nil, zap.NewNop(), "@every 1h", 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
