package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/xavierca1/consult-intake/internal/entity"
	"github.com/xavierca1/consult-intake/internal/infra/queue"
	"go.uber.org/zap"
)

const (
	DefaultDuplicateWindow = 5 * time.Minute
	DefaultSource          = "website"

	WarningDeliveryDelayed = "Consultation received, but notification delivery may be delayed"
)

type SubmitConsultationConfig struct {
	DuplicateWindow time.Duration
	DefaultSource   string
	RedeliveryDelay time.Duration
}

type SubmitConsultationUseCase struct {
	Submissions entity.SubmissionRepositoryInterface
	Leads       entity.LeadRepositoryInterface
	Payloads    *PayloadBuilder
	Webhook     WebhookDispatcher
	Redelivery  RedeliveryPublisher // nil disables automatic redelivery
	Alerts      AlertSender         // nil disables delivery alerts
	Metrics     MetricsRecorder
	Log         *zap.Logger
	Config      SubmitConsultationConfig

	now   func() time.Time
	newID func(time.Time) string
	spawn func(func())
}

func NewSubmitConsultationUseCase(
	submissions entity.SubmissionRepositoryInterface,
	leads entity.LeadRepositoryInterface,
	payloads *PayloadBuilder,
	webhook WebhookDispatcher,
	redelivery RedeliveryPublisher,
	alerts AlertSender,
	metrics MetricsRecorder,
	log *zap.Logger,
	cfg SubmitConsultationConfig,
) *SubmitConsultationUseCase {
	if cfg.DuplicateWindow <= 0 {
		cfg.DuplicateWindow = DefaultDuplicateWindow
	}
	if cfg.DefaultSource == "" {
		cfg.DefaultSource = DefaultSource
	}
	if log == nil {
		log = zap.NewNop()
	}
	if payloads == nil {
		payloads = NewPayloadBuilder(nil)
	}

	return &SubmitConsultationUseCase{
		Submissions: submissions,
		Leads:       leads,
		Payloads:    payloads,
		Webhook:     webhook,
		Redelivery:  redelivery,
		Alerts:      alerts,
		Metrics:     metricsOrNoop(metrics),
		Log:         log.Named("submit_consultation"),
		Config:      cfg,
		now:         time.Now,
		newID:       NewSubmissionID,
		spawn:       func(fn func()) { go fn() },
	}
}

// Execute runs the submission pipeline. Only validation fails the call; every later
// step degrades instead of erroring.
func (uc *SubmitConsultationUseCase) Execute(ctx context.Context, input SubmitConsultationInput, meta RequestMeta) (*SubmitConsultationOutput, error) {
	input = NormalizeSubmitConsultationInput(input)
	if issues := ValidateSubmitConsultationInput(input); len(issues) > 0 {
		return nil, &ValidationFailedError{Issues: issues}
	}

	now := uc.now()

	guard := uc.checkDuplicate(ctx, input.Email, now)
	uc.Metrics.RecordSubmission(guard.Verdict.String())

	if guard.Verdict == GuardDuplicate {
		uc.Log.Info("duplicate submission short-circuited",
			zap.String("submission_id", guard.Prior.SubmissionID),
			zap.String("email", input.Email))
		emailSent := false
		return &SubmitConsultationOutput{
			Success:      true,
			SubmissionID: guard.Prior.SubmissionID,
			Duplicate:    true,
			EmailSent:    &emailSent,
		}, nil
	}

	var (
		submission  *entity.ConsultationSubmission
		persisted   bool
		isDuplicate bool
	)

	if guard.Verdict == GuardRetry {
		// resend the stored row, not the new form
		submission = guard.Prior
		persisted = true
		isDuplicate = true
		uc.Log.Info("retrying undelivered submission",
			zap.String("submission_id", submission.SubmissionID))
	} else {
		p := uc.persist(ctx, input, meta, now)
		submission = p.Submission
		persisted = p.Persisted
		if persisted {
			uc.projectLead(ctx, submission, now)
		}
	}

	payload := uc.Payloads.Build(submission, isDuplicate, now)

	dispatch := uc.dispatch(ctx, payload)
	out := &SubmitConsultationOutput{Success: true, SubmissionID: submission.SubmissionID}

	if dispatch.Degraded() {
		out.Warning = WarningDeliveryDelayed
		uc.reconcile(ctx, submission, payload, persisted, dispatch.Err, now)
		return out, nil
	}

	out.ExecutionID = dispatch.ExecutionID
	if persisted {
		uc.updateStatus(ctx, submission, uc.now())
	}

	return out, nil
}

func (uc *SubmitConsultationUseCase) checkDuplicate(ctx context.Context, email string, now time.Time) GuardOutcome {
	prior, err := uc.Submissions.FindRecentByEmail(ctx, email, now.Add(-uc.Config.DuplicateWindow))
	switch {
	case errors.Is(err, entity.ErrSubmissionNotFound):
		return GuardOutcome{Verdict: GuardNoPrior}
	case err != nil:
		uc.Metrics.RecordStepFailure("duplicate_guard")
		uc.Log.Warn("duplicate check failed, continuing as new submission",
			zap.String("email", email), zap.Error(err))
		return GuardOutcome{Verdict: GuardNoPrior, Err: err}
	case prior == nil:
		return GuardOutcome{Verdict: GuardNoPrior}
	case prior.WebhookSent:
		return GuardOutcome{Verdict: GuardDuplicate, Prior: prior}
	default:
		return GuardOutcome{Verdict: GuardRetry, Prior: prior}
	}
}

func (uc *SubmitConsultationUseCase) newSubmission(id string, input SubmitConsultationInput, meta RequestMeta, createdAt time.Time) *entity.ConsultationSubmission {
	s := entity.NewConsultationSubmission(id, input.Services, createdAt)
	s.Name = input.Name
	s.Email = input.Email
	s.Phone = input.Phone
	s.Location = input.Location
	s.Company = input.Company
	s.BusinessType = input.BusinessType
	s.Budget = input.Budget
	s.Timeline = input.Timeline
	s.PreferredContact = input.PreferredContact
	s.PreferredTime = input.PreferredTime
	s.Message = input.Message
	s.Language = input.Language
	s.Source = input.Source
	if s.Source == "" {
		s.Source = uc.Config.DefaultSource
	}
	s.IPAddress = meta.IPAddress
	s.UserAgent = meta.UserAgent
	s.Referrer = meta.Referrer
	return s
}

func (uc *SubmitConsultationUseCase) persist(ctx context.Context, input SubmitConsultationInput, meta RequestMeta, now time.Time) PersistOutcome {
	s := uc.newSubmission(uc.newID(now), input, meta, now)

	if err := uc.Submissions.Create(ctx, s); err != nil {
		uc.Metrics.RecordStepFailure("persist")
		uc.Log.Error("failed to persist submission, dispatching with local id",
			zap.String("submission_id", s.SubmissionID),
			zap.String("email", s.Email),
			zap.Error(err))
		return PersistOutcome{Submission: s, Err: err}
	}

	return PersistOutcome{Submission: s, Persisted: true}
}

func (uc *SubmitConsultationUseCase) projectLead(ctx context.Context, s *entity.ConsultationSubmission, now time.Time) LeadOutcome {
	if uc.Leads == nil {
		return LeadOutcome{Skipped: true}
	}

	err := uc.Leads.Create(ctx, entity.NewLeadFromSubmission(s, now))
	switch {
	case err == nil:
		return LeadOutcome{Created: true}
	case errors.Is(err, entity.ErrLeadAlreadyExists):
		return LeadOutcome{AlreadyExisted: true}
	default:
		uc.Metrics.RecordStepFailure("lead")
		uc.Log.Warn("failed to create lead",
			zap.String("submission_id", s.SubmissionID), zap.Error(err))
		return LeadOutcome{Err: err}
	}
}

func (uc *SubmitConsultationUseCase) dispatch(ctx context.Context, payload entity.WebhookPayload) DispatchOutcome {
	executionID, err := uc.Webhook.Dispatch(ctx, payload)
	if err != nil {
		uc.Metrics.RecordDispatch("failed")
		uc.Log.Error("webhook dispatch failed",
			zap.String("submission_id", payload.SubmissionID), zap.Error(err))
		return DispatchOutcome{Err: err}
	}

	uc.Metrics.RecordDispatch("delivered")
	uc.Log.Info("webhook delivered",
		zap.String("submission_id", payload.SubmissionID),
		zap.String("execution_id", executionID))
	return DispatchOutcome{Delivered: true, ExecutionID: executionID}
}

func (uc *SubmitConsultationUseCase) updateStatus(ctx context.Context, s *entity.ConsultationSubmission, at time.Time) StatusOutcome {
	if err := uc.Submissions.MarkWebhookSent(ctx, s.SubmissionID, at); err != nil {
		uc.Metrics.RecordStepFailure("status_update")
		uc.Log.Error("webhook delivered but status update failed",
			zap.String("submission_id", s.SubmissionID), zap.Error(err))
		return StatusOutcome{Err: err}
	}
	s.MarkDelivered(at)
	return StatusOutcome{Updated: true}
}

// reconcile hands a failed delivery to the alerting and redelivery paths. Neither
// affects the response.
func (uc *SubmitConsultationUseCase) reconcile(ctx context.Context, s *entity.ConsultationSubmission, payload entity.WebhookPayload, persisted bool, cause error, now time.Time) {
	if uc.Alerts != nil {
		alert := DeliveryFailureAlert{
			SubmissionID:   s.SubmissionID,
			ClientName:     s.Name,
			Email:          s.Email,
			Phone:          s.Phone,
			PrimaryService: s.PrimaryService,
			Language:       s.Language,
			Reason:         cause.Error(),
			OccurredAt:     now,
		}
		bg := context.WithoutCancel(ctx)
		uc.spawn(func() {
			if err := uc.Alerts.SendDeliveryFailure(bg, alert); err != nil {
				uc.Log.Warn("failed to send delivery alert",
					zap.String("submission_id", alert.SubmissionID), zap.Error(err))
			}
		})
	}

	if uc.Redelivery == nil || !persisted {
		return
	}

	msg := queue.RedeliveryMessage{
		SubmissionID:  s.SubmissionID,
		Attempt:       1,
		Payload:       payload,
		FirstFailedAt: now,
		LastError:     cause.Error(),
	}
	if err := uc.Redelivery.PublishRedelivery(ctx, msg, uc.Config.RedeliveryDelay); err != nil {
		uc.Metrics.RecordStepFailure("redelivery_enqueue")
		uc.Log.Error("failed to schedule webhook redelivery",
			zap.String("submission_id", s.SubmissionID), zap.Error(err))
		return
	}
	uc.Log.Info("webhook redelivery scheduled",
		zap.String("submission_id", s.SubmissionID),
		zap.Duration("delay", uc.Config.RedeliveryDelay))
}
