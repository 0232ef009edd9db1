package out

import (
	"context"
	"fmt"

	"tdrill/internal/modules/session/domain"
	sessionout "tdrill/internal/modules/session/port/out"
	statsdto "tdrill/internal/modules/stats/dto"
	statsin "tdrill/internal/modules/stats/port/in"
)

type StatsSinkAdapter struct {
	stats statsin.Usecase
}

func NewStatsSinkAdapter(stats statsin.Usecase) sessionout.StatsSink {
	return &StatsSinkAdapter{stats: stats}
}

func (a *StatsSinkAdapter) RecordSession(ctx context.Context, stats domain.Stats) error {
	_, err := a.stats.Record(ctx, statsdto.RecordInput{
		Timestamp:         stats.Timestamp,
		TotalResponses:    stats.TotalResponses,
		CorrectResponses:  stats.CorrectResponses,
		AverageReactionMs: stats.AverageReactionMs,
	})
	if err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	return nil
}
