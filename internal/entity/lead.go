package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrLeadAlreadyExists = errors.New("lead already exists for submission")

const (
	LeadStageNew = "new"

	LeadSourceConsultation = "consultation_form"
)

type LeadStage struct {
	Stage     string    `json:"stage"`
	EnteredAt time.Time `json:"enteredAt"`
}

// Lead is a projection of a submission. Stages are append-only and the first one is
// always LeadStageNew.
type Lead struct {
	ID           string         `json:"id"`
	SubmissionID string         `json:"submission_id"`
	Email        string         `json:"email"`
	CurrentStage string         `json:"current_stage"`
	Stages       []LeadStage    `json:"stages"`
	Metadata     map[string]any `json:"metadata"`
	Source       string         `json:"source"`
	CreatedAt    time.Time      `json:"created_at"`
}

func NewLeadFromSubmission(s *ConsultationSubmission, now time.Time) *Lead {
	return &Lead{
		ID:           uuid.New().String(),
		SubmissionID: s.SubmissionID,
		Email:        s.Email,
		CurrentStage: LeadStageNew,
		Stages:       []LeadStage{{Stage: LeadStageNew, EnteredAt: now}},
		Metadata: map[string]any{
			"name":        s.Name,
			"services":    s.Services,
			"language":    s.Language,
			"submittedAt": s.CreatedAt.UTC().Format(time.RFC3339),
		},
		Source:    LeadSourceConsultation,
		CreatedAt: now,
	}
}

type LeadRepositoryInterface interface {
	// Create returns ErrLeadAlreadyExists when the submission already has a lead.
	Create(ctx context.Context, lead *Lead) error
}
