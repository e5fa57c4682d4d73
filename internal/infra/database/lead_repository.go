package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/xavierca1/consult-intake/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

// Create inserts the lead projection. A second lead for the same submission yields
// entity.ErrLeadAlreadyExists.
func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	stages, err := json.Marshal(lead.Stages)
	if err != nil {
		return fmt.Errorf("encode stages: %w", err)
	}
	metadata, err := json.Marshal(lead.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	query := `
		INSERT INTO leads (id, submission_id, email, current_stage, stages, metadata, source, created_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7, $8)
	`

	_, err = r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.SubmissionID,
		lead.Email,
		lead.CurrentStage,
		string(stages),
		string(metadata),
		lead.Source,
		lead.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.ErrLeadAlreadyExists
		}
		return wrapDBError("insert lead "+lead.SubmissionID, err)
	}
	return nil
}
