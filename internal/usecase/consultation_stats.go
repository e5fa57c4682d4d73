package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/xavierca1/consult-intake/internal/entity"
	"go.uber.org/zap"
)

type ConsultationStatsUseCase struct {
	Submissions entity.SubmissionRepositoryInterface
	Cache       StatsCache // optional
	Log         *zap.Logger

	now func() time.Time
}

func NewConsultationStatsUseCase(submissions entity.SubmissionRepositoryInterface, cache StatsCache, log *zap.Logger) *ConsultationStatsUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConsultationStatsUseCase{
		Submissions: submissions,
		Cache:       cache,
		Log:         log.Named("consultation_stats"),
		now:         time.Now,
	}
}

func (uc *ConsultationStatsUseCase) Execute(ctx context.Context) (*entity.ConsultationStats, error) {
	if uc.Cache != nil {
		stats, ok, err := uc.Cache.GetStats(ctx)
		if err != nil {
			uc.Log.Warn("stats cache read failed", zap.Error(err))
		} else if ok {
			return stats, nil
		}
	}

	stats, err := uc.Submissions.Stats(ctx, uc.now().Add(-24*time.Hour))
	if err != nil {
		return nil, &TechnicalError{Code: "STATS_QUERY_FAILED", Message: "failed to load consultation stats", Err: err}
	}

	if uc.Cache != nil {
		if err := uc.Cache.SetStats(ctx, stats); err != nil {
			uc.Log.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// CountSubmissions backs the storage diagnostics endpoint.
func (uc *ConsultationStatsUseCase) CountSubmissions(ctx context.Context) (int64, error) {
	n, err := uc.Submissions.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return n, nil
}
