package usecase

import (
	"context"
	"strings"

	"github.com/xavierca1/consult-intake/internal/entity"
)

type GetConsultationUseCase struct {
	Submissions entity.SubmissionRepositoryInterface
}

func NewGetConsultationUseCase(submissions entity.SubmissionRepositoryInterface) *GetConsultationUseCase {
	return &GetConsultationUseCase{Submissions: submissions}
}

// Execute returns the stored values exactly as submitted. Translation only ever
// happens on the outbound payload.
func (uc *GetConsultationUseCase) Execute(ctx context.Context, submissionID string) (*ConsultationView, error) {
	submissionID = strings.TrimSpace(submissionID)
	if submissionID == "" {
		return nil, entity.ErrSubmissionNotFound
	}

	s, err := uc.Submissions.FindBySubmissionID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	return newConsultationView(s), nil
}
