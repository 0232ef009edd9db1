package usecase

import (
	"context"
	"fmt"

	"tdrill/internal/modules/prefs/domain"
	"tdrill/internal/modules/prefs/dto"
	prefsin "tdrill/internal/modules/prefs/port/in"
	"tdrill/internal/modules/prefs/service"
	apperrors "tdrill/internal/platform/errors"
)

type Interactor struct {
	svc *service.PrefsService
}

func NewInteractor(svc *service.PrefsService) prefsin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Get(ctx context.Context) (dto.PrefsOutput, error) {
	prefs, err := i.svc.Get(ctx)
	if err != nil {
		return dto.PrefsOutput{}, err
	}
	return dto.PrefsOutput{Labels: toLabels(prefs.Labels), Session: toDefaults(prefs.Session)}, nil
}

func (i *Interactor) SetLabels(ctx context.Context, input dto.SetLabelsInput) (dto.LabelsOutput, error) {
	preset, err := domain.ParsePreset(input.Preset)
	if err != nil {
		return dto.LabelsOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	cfg, err := i.svc.SetLabels(ctx, preset, input.CustomThreat, input.CustomNonThreat)
	if err != nil {
		return dto.LabelsOutput{}, err
	}
	return toLabels(cfg), nil
}

func (i *Interactor) SetSessionDefaults(ctx context.Context, input dto.SessionDefaults) (dto.SessionDefaults, error) {
	out, err := i.svc.SetSessionDefaults(ctx, domain.SessionDefaults{
		IncludeVideos:   input.IncludeVideos,
		IncludePhotos:   input.IncludePhotos,
		DurationMinutes: input.DurationMinutes,
	})
	if err != nil {
		return dto.SessionDefaults{}, err
	}
	return toDefaults(out), nil
}

func toLabels(cfg domain.LabelConfig) dto.LabelsOutput {
	labels := cfg.Resolve()
	return dto.LabelsOutput{
		Preset:          string(cfg.Preset),
		CustomThreat:    cfg.CustomThreat,
		CustomNonThreat: cfg.CustomNonThreat,
		Threat:          labels.Threat,
		NonThreat:       labels.NonThreat,
	}
}

func toDefaults(d domain.SessionDefaults) dto.SessionDefaults {
	return dto.SessionDefaults{IncludeVideos: d.IncludeVideos, IncludePhotos: d.IncludePhotos, DurationMinutes: d.DurationMinutes}
}
