package out

import (
	"context"

	mediadto "tdrill/internal/modules/media/dto"
	mediain "tdrill/internal/modules/media/port/in"
	"tdrill/internal/modules/session/domain"
	sessionout "tdrill/internal/modules/session/port/out"
)

type MediaCatalogAdapter struct {
	media mediain.Usecase
}

func NewMediaCatalogAdapter(media mediain.Usecase) sessionout.MediaCatalog {
	return &MediaCatalogAdapter{media: media}
}

func (a *MediaCatalogAdapter) FetchEligibleMedia(ctx context.Context, includeVideos, includePhotos bool) ([]domain.MediaItem, error) {
	items, err := a.media.Eligible(ctx, mediadto.EligibleInput{IncludeVideos: includeVideos, IncludePhotos: includePhotos})
	if err != nil {
		return nil, err
	}
	out := make([]domain.MediaItem, 0, len(items))
	for _, item := range items {
		out = append(out, domain.MediaItem{
			Location: item.Location,
			Kind:     domain.MediaKind(item.Kind),
			Class:    domain.Classification(item.Class),
		})
	}
	return out, nil
}

func (a *MediaCatalogAdapter) ResolveDisplayURL(ctx context.Context, item domain.MediaItem) (string, error) {
	return a.media.ResolveDisplayURL(ctx, mediadto.ItemOutput{
		Location: item.Location,
		Kind:     string(item.Kind),
		Class:    string(item.Class),
	})
}
