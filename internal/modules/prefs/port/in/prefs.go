package in

import (
	"context"

	"tdrill/internal/modules/prefs/dto"
)

type Usecase interface {
	Get(ctx context.Context) (dto.PrefsOutput, error)
	SetLabels(ctx context.Context, input dto.SetLabelsInput) (dto.LabelsOutput, error)
	SetSessionDefaults(ctx context.Context, input dto.SessionDefaults) (dto.SessionDefaults, error)
}
