package entity

import (
	"context"
	"errors"
	"time"
)

var ErrSubmissionNotFound = errors.New("consultation submission not found")

const (
	StatusPending   = "pending"
	StatusContacted = "contacted"
)

const (
	LanguageEnglish = "en"
	LanguageArabic  = "ar"
)

type ConsultationSubmission struct {
	ID           int64  `json:"-"`
	SubmissionID string `json:"submissionId"`

	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Location     string `json:"location,omitempty"`
	Company      string `json:"company,omitempty"`
	BusinessType string `json:"businessType,omitempty"`

	Services         []string `json:"services"`
	PrimaryService   string   `json:"primaryService"`
	Budget           string   `json:"budget,omitempty"`
	Timeline         string   `json:"timeline,omitempty"`
	PreferredContact string   `json:"preferredContact,omitempty"`
	PreferredTime    string   `json:"preferredTime,omitempty"`
	Message          string   `json:"message,omitempty"`
	Language         string   `json:"language"`

	Source    string `json:"source"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
	Referrer  string `json:"-"`

	Status        string     `json:"status"`
	WebhookSent   bool       `json:"webhookSent"`
	WebhookSentAt *time.Time `json:"webhookSentAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewConsultationSubmission builds a pending, undelivered submission. services must
// already be validated as non-empty; PrimaryService is always its first element.
func NewConsultationSubmission(submissionID string, services []string, now time.Time) *ConsultationSubmission {
	s := &ConsultationSubmission{
		SubmissionID: submissionID,
		Services:     append([]string(nil), services...),
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if len(s.Services) > 0 {
		s.PrimaryService = s.Services[0]
	}
	return s
}

// MarkDelivered applies the only status transition a submission has.
func (s *ConsultationSubmission) MarkDelivered(at time.Time) {
	s.WebhookSent = true
	s.WebhookSentAt = &at
	s.Status = StatusContacted
	s.UpdatedAt = at
}

type ConsultationStats struct {
	Total    int64            `json:"total"`
	Last24h  int64            `json:"last24h"`
	ByStatus map[string]int64 `json:"byStatus"`
}

type SubmissionRepositoryInterface interface {
	Create(ctx context.Context, s *ConsultationSubmission) error
	FindRecentByEmail(ctx context.Context, email string, since time.Time) (*ConsultationSubmission, error)
	FindBySubmissionID(ctx context.Context, submissionID string) (*ConsultationSubmission, error)
	MarkWebhookSent(ctx context.Context, submissionID string, at time.Time) error
	Stats(ctx context.Context, since time.Time) (*ConsultationStats, error)
	Count(ctx context.Context) (int64, error)
	ListStalePending(ctx context.Context, before time.Time, limit int) ([]*ConsultationSubmission, error)
}
