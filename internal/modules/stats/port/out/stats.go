package out

import (
	"context"

	"tdrill/internal/modules/stats/domain"
)

type StatsStore interface {
	Insert(ctx context.Context, stats domain.SessionStats) (int64, error)
	// List returns sessions newest first; limit <= 0 returns all of them.
	List(ctx context.Context, limit int) ([]domain.SessionStats, error)
	Clear(ctx context.Context) (int64, error)
}
