package usecase

import (
	"time"

	"github.com/xavierca1/consult-intake/internal/entity"
)

type SubmitConsultationInput struct {
	Name             string   `json:"name" validate:"required,min=2,max=100"`
	Email            string   `json:"email" validate:"required,email"`
	Phone            string   `json:"phone,omitempty" validate:"omitempty,max=50"`
	Location         string   `json:"location,omitempty" validate:"omitempty,max=200"`
	Company          string   `json:"company,omitempty" validate:"omitempty,max=200"`
	BusinessType     string   `json:"businessType,omitempty" validate:"omitempty,max=100"`
	Services         []string `json:"services" validate:"required,min=1,dive,required,max=100"`
	Budget           string   `json:"budget,omitempty" validate:"omitempty,max=100"`
	Timeline         string   `json:"timeline,omitempty" validate:"omitempty,max=100"`
	PreferredContact string   `json:"preferredContact,omitempty" validate:"omitempty,max=100"`
	PreferredTime    string   `json:"preferredTime,omitempty" validate:"omitempty,max=100"`
	Message          string   `json:"message,omitempty" validate:"omitempty,max=5000"`
	Language         string   `json:"language,omitempty" validate:"oneof=en ar"`
	Source           string   `json:"source,omitempty" validate:"omitempty,max=100"`
}

// RequestMeta carries provenance captured by the transport layer.
type RequestMeta struct {
	IPAddress string
	UserAgent string
	Referrer  string
}

type SubmitConsultationOutput struct {
	Success      bool   `json:"success"`
	SubmissionID string `json:"submissionId"`
	Duplicate    bool   `json:"duplicate,omitempty"`
	EmailSent    *bool  `json:"emailSent,omitempty"`
	ExecutionID  string `json:"executionId,omitempty"`
	Warning      string `json:"warning,omitempty"`
}

// ConsultationView is the public projection served to the confirmation page.
type ConsultationView struct {
	SubmissionID     string     `json:"submissionId"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone,omitempty"`
	Location         string     `json:"location,omitempty"`
	Company          string     `json:"company,omitempty"`
	BusinessType     string     `json:"businessType,omitempty"`
	Services         []string   `json:"services"`
	PrimaryService   string     `json:"primaryService"`
	Budget           string     `json:"budget,omitempty"`
	Timeline         string     `json:"timeline,omitempty"`
	PreferredContact string     `json:"preferredContact,omitempty"`
	PreferredTime    string     `json:"preferredTime,omitempty"`
	Message          string     `json:"message,omitempty"`
	Language         string     `json:"language"`
	Status           string     `json:"status"`
	WebhookSent      bool       `json:"webhookSent"`
	WebhookSentAt    *time.Time `json:"webhookSentAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func newConsultationView(s *entity.ConsultationSubmission) *ConsultationView {
	return &ConsultationView{
		SubmissionID:     s.SubmissionID,
		Name:             s.Name,
		Email:            s.Email,
		Phone:            s.Phone,
		Location:         s.Location,
		Company:          s.Company,
		BusinessType:     s.BusinessType,
		Services:         s.Services,
		PrimaryService:   s.PrimaryService,
		Budget:           s.Budget,
		Timeline:         s.Timeline,
		PreferredContact: s.PreferredContact,
		PreferredTime:    s.PreferredTime,
		Message:          s.Message,
		Language:         s.Language,
		Status:           s.Status,
		WebhookSent:      s.WebhookSent,
		WebhookSentAt:    s.WebhookSentAt,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}
