package in

import (
	"context"

	"tdrill/internal/modules/prefs/dto"
	prefsin "tdrill/internal/modules/prefs/port/in"
)

type CLIHandler struct {
	usecase prefsin.Usecase
}

func NewCLIHandler(usecase prefsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Show(ctx context.Context) (dto.PrefsOutput, error) {
	return h.usecase.Get(ctx)
}

func (h CLIHandler) SetLabels(ctx context.Context, preset, threat, nonThreat string) (dto.LabelsOutput, error) {
	return h.usecase.SetLabels(ctx, dto.SetLabelsInput{Preset: preset, CustomThreat: threat, CustomNonThreat: nonThreat})
}

func (h CLIHandler) SetSessionDefaults(ctx context.Context, videos, photos bool, minutes int) (dto.SessionDefaults, error) {
	return h.usecase.SetSessionDefaults(ctx, dto.SessionDefaults{IncludeVideos: videos, IncludePhotos: photos, DurationMinutes: minutes})
}
