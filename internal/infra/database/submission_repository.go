package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/consult-intake/internal/entity"
)

const submissionColumns = `id, submission_id, name, email, phone, location, company, business_type,
	services, primary_service, budget, timeline, preferred_contact, preferred_time, message,
	language, source, ip_address, user_agent, referrer, status, webhook_sent, webhook_sent_at,
	created_at, updated_at`

type SubmissionRepository struct {
	DB *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) Create(ctx context.Context, s *entity.ConsultationSubmission) error {
	services, err := json.Marshal(s.Services)
	if err != nil {
		return fmt.Errorf("encode services: %w", err)
	}

	query := `
		INSERT INTO consultation_submissions (
			submission_id, name, email, phone, location, company, business_type,
			services, primary_service, budget, timeline, preferred_contact, preferred_time,
			message, language, source, ip_address, user_agent, referrer,
			status, webhook_sent, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8::jsonb, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23
		)
		RETURNING id
	`

	err = r.DB.QueryRowContext(ctx, query,
		s.SubmissionID,
		s.Name,
		s.Email,
		nullString(s.Phone),
		nullString(s.Location),
		nullString(s.Company),
		nullString(s.BusinessType),
		string(services),
		s.PrimaryService,
		nullString(s.Budget),
		nullString(s.Timeline),
		nullString(s.PreferredContact),
		nullString(s.PreferredTime),
		nullString(s.Message),
		s.Language,
		s.Source,
		nullString(s.IPAddress),
		nullString(s.UserAgent),
		nullString(s.Referrer),
		s.Status,
		s.WebhookSent,
		s.CreatedAt,
		s.UpdatedAt,
	).Scan(&s.ID)
	if err != nil {
		return wrapDBError("insert submission "+s.SubmissionID, err)
	}
	return nil
}

// FindRecentByEmail returns the newest submission for email created at or after
// since. Emails compare case-insensitively.
func (r *SubmissionRepository) FindRecentByEmail(ctx context.Context, email string, since time.Time) (*entity.ConsultationSubmission, error) {
	query := `SELECT ` + submissionColumns + `
		FROM consultation_submissions
		WHERE lower(email) = lower($1) AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT 1`

	s, err := scanSubmission(r.DB.QueryRowContext(ctx, query, email, since))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, wrapDBError("find recent submission", err)
	}
	return s, nil
}

func (r *SubmissionRepository) FindBySubmissionID(ctx context.Context, submissionID string) (*entity.ConsultationSubmission, error) {
	query := `SELECT ` + submissionColumns + `
		FROM consultation_submissions
		WHERE submission_id = $1`

	s, err := scanSubmission(r.DB.QueryRowContext(ctx, query, submissionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, wrapDBError("find submission "+submissionID, err)
	}
	return s, nil
}

// MarkWebhookSent performs the pending -> contacted transition.
func (r *SubmissionRepository) MarkWebhookSent(ctx context.Context, submissionID string, at time.Time) error {
	query := `
		UPDATE consultation_submissions
		SET webhook_sent = TRUE, webhook_sent_at = $2, status = $3, updated_at = $2
		WHERE submission_id = $1
	`

	res, err := r.DB.ExecContext(ctx, query, submissionID, at, entity.StatusContacted)
	if err != nil {
		return wrapDBError("mark webhook sent "+submissionID, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return wrapDBError("mark webhook sent "+submissionID, err)
	}
	if rows == 0 {
		return entity.ErrSubmissionNotFound
	}
	return nil
}

func (r *SubmissionRepository) Stats(ctx context.Context, since time.Time) (*entity.ConsultationStats, error) {
	stats := &entity.ConsultationStats{ByStatus: map[string]int64{}}

	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE created_at >= $1)
		FROM consultation_submissions
	`, since).Scan(&stats.Total, &stats.Last24h)
	if err != nil {
		return nil, wrapDBError("count submissions", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM consultation_submissions
		GROUP BY status
	`)
	if err != nil {
		return nil, wrapDBError("count by status", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, wrapDBError("scan status count", err)
		}
		stats.ByStatus[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("count by status", err)
	}

	return stats, nil
}

func (r *SubmissionRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM consultation_submissions`).Scan(&n); err != nil {
		return 0, wrapDBError("count submissions", err)
	}
	return n, nil
}

// ListStalePending returns undelivered submissions created before the cutoff, oldest
// first.
func (r *SubmissionRepository) ListStalePending(ctx context.Context, before time.Time, limit int) ([]*entity.ConsultationSubmission, error) {
	query := `SELECT ` + submissionColumns + `
		FROM consultation_submissions
		WHERE webhook_sent = FALSE AND created_at < $1
		ORDER BY created_at ASC
		LIMIT $2`

	rows, err := r.DB.QueryContext(ctx, query, before, limit)
	if err != nil {
		return nil, wrapDBError("list stale pending", err)
	}
	defer rows.Close()

	var out []*entity.ConsultationSubmission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, wrapDBError("scan stale pending", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("list stale pending", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*entity.ConsultationSubmission, error) {
	var (
		s                                                 entity.ConsultationSubmission
		services                                          []byte
		phone, location, company, businessType            sql.NullString
		budget, timeline, preferredContact, preferredTime sql.NullString
		message, ipAddress, userAgent, referrer           sql.NullString
		webhookSentAt                                     sql.NullTime
	)

	err := row.Scan(
		&s.ID,
		&s.SubmissionID,
		&s.Name,
		&s.Email,
		&phone,
		&location,
		&company,
		&businessType,
		&services,
		&s.PrimaryService,
		&budget,
		&timeline,
		&preferredContact,
		&preferredTime,
		&message,
		&s.Language,
		&s.Source,
		&ipAddress,
		&userAgent,
		&referrer,
		&s.Status,
		&s.WebhookSent,
		&webhookSentAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(services, &s.Services); err != nil {
		return nil, fmt.Errorf("decode services of %s: %w", s.SubmissionID, err)
	}

	s.Phone = phone.String
	s.Location = location.String
	s.Company = company.String
	s.BusinessType = businessType.String
	s.Budget = budget.String
	s.Timeline = timeline.String
	s.PreferredContact = preferredContact.String
	s.PreferredTime = preferredTime.String
	s.Message = message.String
	s.IPAddress = ipAddress.String
	s.UserAgent = userAgent.String
	s.Referrer = referrer.String
	if webhookSentAt.Valid {
		at := webhookSentAt.Time
		s.WebhookSentAt = &at
	}

	return &s, nil
}
