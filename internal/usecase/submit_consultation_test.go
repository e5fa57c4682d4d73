package usecase

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/consult-intake/internal/entity"
	"github.com/xavierca1/consult-intake/internal/infra/queue"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

const fixedID = "sub_1773135000000_a1b2c3d4e"

type submitFixture struct {
	repo       *MockSubmissionRepository
	leads      *MockLeadRepository
	webhook    *MockWebhook
	redelivery *MockRedeliveryPublisher
	alerts     *MockAlertSender
	metrics    *recordingMetrics
	uc         *SubmitConsultationUseCase
}

func newSubmitFixture() *submitFixture {
	f := &submitFixture{
		repo:       new(MockSubmissionRepository),
		leads:      new(MockLeadRepository),
		webhook:    new(MockWebhook),
		redelivery: new(MockRedeliveryPublisher),
		alerts:     new(MockAlertSender),
		metrics:    &recordingMetrics{},
	}
	f.uc = NewSubmitConsultationUseCase(
		f.repo, f.leads, NewPayloadBuilder(nil), f.webhook, f.redelivery, f.alerts, f.metrics,
		zap.NewNop(), SubmitConsultationConfig{RedeliveryDelay: time.Minute},
	)
	f.uc.now = func() time.Time { return fixedNow }
	f.uc.newID = func(time.Time) string { return fixedID }
	f.uc.spawn = func(fn func()) { fn() }
	return f
}

func (f *submitFixture) noPrior(email string) {
	f.repo.On("FindRecentByEmail", mock.Anything, email, fixedNow.Add(-5*time.Minute)).
		Return(nil, entity.ErrSubmissionNotFound)
}

func validInput() SubmitConsultationInput {
	return SubmitConsultationInput{
		Name:     "Ali Hassan",
		Email:    "ali@example.com",
		Services: []string{"vat", "accounting"},
		Language: "ar",
	}
}

func TestSubmitConsultation_NewSubmissionDelivered(t *testing.T) {
	f := newSubmitFixture()
	f.uc.newID = NewSubmissionID
	f.noPrior("ali@example.com")

	var stored *entity.ConsultationSubmission
	f.repo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			c := *args.Get(1).(*entity.ConsultationSubmission)
			stored = &c
		}).
		Return(nil)
	f.leads.On("Create", mock.Anything, mock.Anything).Return(nil)

	var sent entity.WebhookPayload
	f.webhook.On("Dispatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(entity.WebhookPayload) }).
		Return("exec-42", nil)
	f.repo.On("MarkWebhookSent", mock.Anything, mock.Anything, fixedNow).Return(nil)

	out, err := f.uc.Execute(context.Background(), validInput(), RequestMeta{IPAddress: "10.0.0.1"})

	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Regexp(t, regexp.MustCompile(`^sub_\d+_[a-z0-9]+$`), out.SubmissionID)
	assert.Equal(t, "exec-42", out.ExecutionID)
	assert.Empty(t, out.Warning)
	assert.False(t, out.Duplicate)
	assert.Nil(t, out.EmailSent)

	require.NotNil(t, stored)
	assert.Equal(t, "vat", stored.PrimaryService)
	assert.Equal(t, []string{"vat", "accounting"}, stored.Services)
	assert.Equal(t, entity.StatusPending, stored.Status)
	assert.Equal(t, DefaultSource, stored.Source)
	assert.Equal(t, "10.0.0.1", stored.IPAddress)

	assert.Equal(t, out.SubmissionID, sent.SubmissionID)
	assert.Equal(t, "VAT", sent.ServiceInterested)
	assert.Equal(t, "vat", sent.ServiceInterestedKey)
	assert.Equal(t, serviceLabels["vat"].ar, sent.ServiceInterestedTranslated)
	assert.False(t, sent.IsDuplicate)

	f.repo.AssertCalled(t, "MarkWebhookSent", mock.Anything, out.SubmissionID, fixedNow)
	f.leads.AssertNumberOfCalls(t, "Create", 1)
	f.alerts.AssertNotCalled(t, "SendDeliveryFailure", mock.Anything, mock.Anything)
	assert.Equal(t, []string{"new"}, f.metrics.submissions)
	assert.Equal(t, []string{"delivered"}, f.metrics.dispatches)
}

func TestSubmitConsultation_DuplicateAfterDelivery(t *testing.T) {
	f := newSubmitFixture()
	prior := entity.NewConsultationSubmission("sub_1773134990000_prior0001", []string{"audit"}, fixedNow.Add(-10*time.Second))
	prior.Email = "bob@example.com"
	prior.MarkDelivered(fixedNow.Add(-9 * time.Second))

	f.repo.On("FindRecentByEmail", mock.Anything, "bob@example.com", fixedNow.Add(-5*time.Minute)).Return(prior, nil)

	input := validInput()
	input.Email = "bob@example.com"
	out, err := f.uc.Execute(context.Background(), input, RequestMeta{})

	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.True(t, out.Duplicate)
	require.NotNil(t, out.EmailSent)
	assert.False(t, *out.EmailSent)
	assert.Equal(t, prior.SubmissionID, out.SubmissionID)

	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.leads.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.webhook.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	assert.Equal(t, []string{"duplicate"}, f.metrics.submissions)
}

func TestSubmitConsultation_RetryReusesUndeliveredID(t *testing.T) {
	f := newSubmitFixture()
	prior := entity.NewConsultationSubmission("sub_1773134950000_prior0002", []string{"vat"}, fixedNow.Add(-50*time.Second))
	prior.Email = "ali@example.com"
	prior.Name = "Ali Hassan"
	prior.Language = "ar"
	prior.Message = "Quarterly VAT filing"

	f.repo.On("FindRecentByEmail", mock.Anything, "ali@example.com", mock.Anything).Return(prior, nil)

	var sent entity.WebhookPayload
	f.webhook.On("Dispatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(entity.WebhookPayload) }).
		Return("", nil)
	f.repo.On("MarkWebhookSent", mock.Anything, prior.SubmissionID, fixedNow).Return(nil)

	in := validInput()
	in.Message = "Also need payroll"
	out, err := f.uc.Execute(context.Background(), in, RequestMeta{})

	require.NoError(t, err)
	assert.Equal(t, prior.SubmissionID, out.SubmissionID)
	assert.False(t, out.Duplicate)
	assert.Equal(t, "Quarterly VAT filing", sent.Message)
	assert.Len(t, sent.Services, 1)
	assert.NotContains(t, sent.Notes, "payroll")
	assert.Empty(t, out.ExecutionID)
	assert.True(t, sent.IsDuplicate)
	assert.Equal(t, prior.SubmissionID, sent.SubmissionID)

	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.leads.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.repo.AssertExpectations(t)
	assert.Equal(t, []string{"retry"}, f.metrics.submissions)
}

func TestSubmitConsultation_GuardFailureContinues(t *testing.T) {
	f := newSubmitFixture()
	f.repo.On("FindRecentByEmail", mock.Anything, "ali@example.com", mock.Anything).
		Return(nil, errors.New("connection reset"))
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.leads.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.webhook.On("Dispatch", mock.Anything, mock.Anything).Return("exec-1", nil)
	f.repo.On("MarkWebhookSent", mock.Anything, fixedID, fixedNow).Return(nil)

	out, err := f.uc.Execute(context.Background(), validInput(), RequestMeta{})

	require.NoError(t, err)
	assert.Equal(t, fixedID, out.SubmissionID)
	assert.Contains(t, f.metrics.failures, "duplicate_guard")
	f.repo.AssertExpectations(t)
}

func TestSubmitConsultation_PersistFailureStillDispatches(t *testing.T) {
	f := newSubmitFixture()
	f.noPrior("ali@example.com")
	f.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	var sent entity.WebhookPayload
	f.webhook.On("Dispatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(entity.WebhookPayload) }).
		Return("exec-7", nil)

	out, err := f.uc.Execute(context.Background(), validInput(), RequestMeta{})

	require.NoError(t, err)
	assert.Equal(t, fixedID, out.SubmissionID)
	assert.Equal(t, "exec-7", out.ExecutionID)
	assert.Equal(t, fixedID, sent.SubmissionID)

	f.leads.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "MarkWebhookSent", mock.Anything, mock.Anything, mock.Anything)
	assert.Contains(t, f.metrics.failures, "persist")
}

func TestSubmitConsultation_LeadConflictIsSilent(t *testing.T) {
	f := newSubmitFixture()
	f.noPrior("ali@example.com")
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.leads.On("Create", mock.Anything, mock.Anything).Return(entity.ErrLeadAlreadyExists)
	f.webhook.On("Dispatch", mock.Anything, mock.Anything).Return("", nil)
	f.repo.On("MarkWebhookSent", mock.Anything, fixedID, fixedNow).Return(nil)

	out, err := f.uc.Execute(context.Background(), validInput(), RequestMeta{})

	require.NoError(t, err)
	assert.Equal(t, fixedID, out.SubmissionID)
	assert.NotContains(t, f.metrics.failures, "lead")
}

func TestSubmitConsultation_LeadFailureDoesNotBlock(t *testing.T) {
	f := newSubmitFixture()
	f.noPrior("ali@example.com")
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.leads.On("Create", mock.Anything, mock.Anything).Return(errors.New("timeout"))
	f.webhook.On("Dispatch", mock.Anything, mock.Anything).Return("", nil)
	f.repo.On("MarkWebhookSent", mock.Anything, fixedID, fixedNow).Return(nil)

	out, err := f.uc.Execute(context.Background(), validInput(), RequestMeta{})

	require.NoError(t, err)
	assert.Empty(t, out.Warning)
	assert.Contains(t, f.metrics.failures, "lead")
}

func TestSubmitConsultation_DispatchFailureWarnsAndReconciles(t *testing.T) {
	f := newSubmitFixture()
	f.noPrior("ali@example.com")
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.leads.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.webhook.On("Dispatch", mock.Anything, mock.Anything).Return("", errors.New("webhook returned 502"))
	f.alerts.On("SendDeliveryFailure", mock.Anything, mock.MatchedBy(func(a DeliveryFailureAlert) bool {
		return a.SubmissionID == fixedID && a.PrimaryService == "vat" && strings.Contains(a.Reason, "502")
	})).Return(nil)
	f.redelivery.On("PublishRedelivery", mock.Anything, mock.MatchedBy(func(m queue.RedeliveryMessage) bool {
		return m.SubmissionID == fixedID && m.Attempt == 1 && m.Payload.SubmissionID == fixedID
	}), time.Minute).Return(nil)

	out, err := f.uc.Execute(context.Background(), validInput(), RequestMeta{})

	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, fixedID, out.SubmissionID)
	assert.Equal(t, WarningDeliveryDelayed, out.Warning)
	assert.Empty(t, out.ExecutionID)

	f.alerts.AssertExpectations(t)
	f.redelivery.AssertExpectations(t)
	f.repo.AssertNotCalled(t, "MarkWebhookSent", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, []string{"failed"}, f.metrics.dispatches)
}

func TestSubmitConsultation_DispatchFailureWithoutRowSkipsRedelivery(t *testing.T) {
	f := newSubmitFixture()
	f.uc.Alerts = nil
	f.noPrior("ali@example.com")
	f.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))
	f.webhook.On("Dispatch", mock.Anything, mock.Anything).Return("", errors.New("timeout"))

	out, err := f.uc.Execute(context.Background(), validInput(), RequestMeta{})

	require.NoError(t, err)
	assert.Equal(t, WarningDeliveryDelayed, out.Warning)
	f.redelivery.AssertNotCalled(t, "PublishRedelivery", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitConsultation_ValidationRejectsBeforeSideEffects(t *testing.T) {
	f := newSubmitFixture()

	input := validInput()
	input.Services = []string{}
	input.Message = strings.Repeat("x", 5001)

	out, err := f.uc.Execute(context.Background(), input, RequestMeta{})

	require.Error(t, err)
	assert.Nil(t, out)

	vErr, ok := AsValidationFailed(err)
	require.True(t, ok)
	paths := make([]string, 0, len(vErr.Issues))
	for _, issue := range vErr.Issues {
		paths = append(paths, issue.Field)
	}
	assert.Contains(t, paths, "services")
	assert.Contains(t, paths, "message")

	f.repo.AssertNotCalled(t, "FindRecentByEmail", mock.Anything, mock.Anything, mock.Anything)
	f.webhook.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestSubmitConsultation_TrimsEmailBeforeGuard(t *testing.T) {
	f := newSubmitFixture()
	f.noPrior("ali@example.com")
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.leads.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.webhook.On("Dispatch", mock.Anything, mock.Anything).Return("", nil)
	f.repo.On("MarkWebhookSent", mock.Anything, fixedID, fixedNow).Return(nil)

	input := validInput()
	input.Email = "  ali@example.com  "
	_, err := f.uc.Execute(context.Background(), input, RequestMeta{})

	require.NoError(t, err)
	f.repo.AssertCalled(t, "FindRecentByEmail", mock.Anything, "ali@example.com", fixedNow.Add(-5*time.Minute))
}
