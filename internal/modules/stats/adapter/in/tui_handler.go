package in

import (
	"context"

	"tdrill/internal/modules/stats/dto"
	statsin "tdrill/internal/modules/stats/port/in"
)

type TUIHandler struct {
	usecase statsin.Usecase
}

func NewTUIHandler(usecase statsin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

// Load returns the most recent sessions together with the all-time summary.
func (h TUIHandler) Load(ctx context.Context, limit int) ([]dto.SessionOutput, dto.SummaryOutput, error) {
	recent, err := h.usecase.ListRecent(ctx, limit)
	if err != nil {
		return nil, dto.SummaryOutput{}, err
	}
	summary, err := h.usecase.Summary(ctx)
	if err != nil {
		return nil, dto.SummaryOutput{}, err
	}
	return recent, summary, nil
}

func (h TUIHandler) Clear(ctx context.Context) (int64, error) {
	return h.usecase.Clear(ctx)
}
