package usecase

import (
	"context"

	"tdrill/internal/modules/stats/domain"
	"tdrill/internal/modules/stats/dto"
	statsin "tdrill/internal/modules/stats/port/in"
	"tdrill/internal/modules/stats/service"
)

type Interactor struct {
	svc *service.StatsService
}

func NewInteractor(svc *service.StatsService) statsin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Record(ctx context.Context, input dto.RecordInput) (dto.SessionOutput, error) {
	stats, err := i.svc.Record(ctx, domain.SessionStats{
		Timestamp:         input.Timestamp,
		TotalResponses:    input.TotalResponses,
		CorrectResponses:  input.CorrectResponses,
		AverageReactionMs: input.AverageReactionMs,
	})
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return toOutput(stats), nil
}

func (i *Interactor) ListRecent(ctx context.Context, limit int) ([]dto.SessionOutput, error) {
	list, err := i.svc.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toOutputs(list), nil
}

func (i *Interactor) ListAll(ctx context.Context) ([]dto.SessionOutput, error) {
	list, err := i.svc.All(ctx)
	if err != nil {
		return nil, err
	}
	return toOutputs(list), nil
}

func (i *Interactor) Summary(ctx context.Context) (dto.SummaryOutput, error) {
	sum, err := i.svc.Summary(ctx)
	if err != nil {
		return dto.SummaryOutput{}, err
	}
	return dto.SummaryOutput{
		Sessions:          sum.Sessions,
		TotalResponses:    sum.TotalResponses,
		CorrectResponses:  sum.CorrectResponses,
		Score:             sum.Score,
		AverageReactionMs: sum.AverageReactionMs,
		BestScore:         sum.BestScore,
		LastPlayed:        sum.LastPlayed,
	}, nil
}

func (i *Interactor) Clear(ctx context.Context) (int64, error) {
	return i.svc.Clear(ctx)
}

func toOutputs(list []domain.SessionStats) []dto.SessionOutput {
	out := make([]dto.SessionOutput, 0, len(list))
	for _, s := range list {
		out = append(out, toOutput(s))
	}
	return out
}

func toOutput(s domain.SessionStats) dto.SessionOutput {
	return dto.SessionOutput{
		ID:                s.ID,
		Timestamp:         s.Timestamp,
		TotalResponses:    s.TotalResponses,
		CorrectResponses:  s.CorrectResponses,
		AverageReactionMs: s.AverageReactionMs,
		Score:             s.Score(),
	}
}
