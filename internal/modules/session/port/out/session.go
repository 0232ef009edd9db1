package out

import (
	"context"

	"tdrill/internal/modules/session/domain"
)

// MediaCatalog supplies the eligible pool with exclusions and
// classification overrides already applied.
type MediaCatalog interface {
	FetchEligibleMedia(ctx context.Context, includeVideos, includePhotos bool) ([]domain.MediaItem, error)
	ResolveDisplayURL(ctx context.Context, item domain.MediaItem) (string, error)
}

// StatsSink durably records finished sessions.
type StatsSink interface {
	RecordSession(ctx context.Context, stats domain.Stats) error
}

// Observer receives run events after the state update that produced them.
type Observer interface {
	ItemDrawn(item domain.MediaItem)
	ResponseRecorded(item domain.MediaItem, result domain.ResponseResult)
	SessionFinished(stats domain.Stats)
}
