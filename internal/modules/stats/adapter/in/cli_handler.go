package in

import (
	"context"

	"tdrill/internal/modules/stats/dto"
	statsin "tdrill/internal/modules/stats/port/in"
)

type CLIHandler struct {
	usecase statsin.Usecase
}

func NewCLIHandler(usecase statsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context, limit int, all bool) ([]dto.SessionOutput, error) {
	if all {
		return h.usecase.ListAll(ctx)
	}
	return h.usecase.ListRecent(ctx, limit)
}

func (h CLIHandler) Summary(ctx context.Context) (dto.SummaryOutput, error) {
	return h.usecase.Summary(ctx)
}

func (h CLIHandler) Clear(ctx context.Context) (int64, error) {
	return h.usecase.Clear(ctx)
}
