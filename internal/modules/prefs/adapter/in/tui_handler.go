package in

import (
	"context"

	"tdrill/internal/modules/prefs/dto"
	prefsin "tdrill/internal/modules/prefs/port/in"
)

type TUIHandler struct {
	usecase prefsin.Usecase
}

func NewTUIHandler(usecase prefsin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Load(ctx context.Context) (dto.PrefsOutput, error) {
	return h.usecase.Get(ctx)
}

// Remember stores the configuration of a session the user just started so the
// setup form opens with it next time.
func (h TUIHandler) Remember(ctx context.Context, videos, photos bool, minutes int) (dto.SessionDefaults, error) {
	return h.usecase.SetSessionDefaults(ctx, dto.SessionDefaults{IncludeVideos: videos, IncludePhotos: photos, DurationMinutes: minutes})
}
