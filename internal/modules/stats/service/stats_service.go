package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"tdrill/internal/modules/stats/domain"
	statsout "tdrill/internal/modules/stats/port/out"
	"tdrill/internal/platform/clock"
	apperrors "tdrill/internal/platform/errors"
)

type StatsService struct {
	clock clock.Clock
	store statsout.StatsStore
	log   zerolog.Logger
}

func NewStatsService(clock clock.Clock, store statsout.StatsStore, logger zerolog.Logger) *StatsService {
	return &StatsService{clock: clock, store: store, log: logger}
}

// Record validates and persists a finished session. A zero timestamp is
// replaced by the current time.
func (s *StatsService) Record(ctx context.Context, stats domain.SessionStats) (domain.SessionStats, error) {
	if stats.Timestamp.IsZero() {
		stats.Timestamp = s.clock.Now()
	}
	if err := stats.Validate(); err != nil {
		return domain.SessionStats{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidStats, err)
	}
	id, err := s.store.Insert(ctx, stats)
	if err != nil {
		return domain.SessionStats{}, err
	}
	stats.ID = id
	s.log.Info().
		Int64("id", id).
		Int("total", stats.TotalResponses).
		Int("correct", stats.CorrectResponses).
		Msg("session stats recorded")
	return stats, nil
}

func (s *StatsService) Recent(ctx context.Context, limit int) ([]domain.SessionStats, error) {
	if limit <= 0 {
		limit = domain.DefaultRecentLimit
	}
	return s.store.List(ctx, limit)
}

func (s *StatsService) All(ctx context.Context) ([]domain.SessionStats, error) {
	return s.store.List(ctx, 0)
}

func (s *StatsService) Summary(ctx context.Context) (domain.Summary, error) {
	all, err := s.store.List(ctx, 0)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(all), nil
}

func (s *StatsService) Clear(ctx context.Context) (int64, error) {
	n, err := s.store.Clear(ctx)
	if err != nil {
		return 0, err
	}
	s.log.Info().Int64("deleted", n).Msg("session history cleared")
	return n, nil
}
