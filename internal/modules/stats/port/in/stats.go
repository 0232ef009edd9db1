package in

import (
	"context"

	"tdrill/internal/modules/stats/dto"
)

type Usecase interface {
	Record(ctx context.Context, input dto.RecordInput) (dto.SessionOutput, error)
	// ListRecent returns the newest sessions first. A non-positive limit
	// uses the default of 10.
	ListRecent(ctx context.Context, limit int) ([]dto.SessionOutput, error)
	ListAll(ctx context.Context) ([]dto.SessionOutput, error)
	Summary(ctx context.Context) (dto.SummaryOutput, error)
	Clear(ctx context.Context) (int64, error)
}
