package service

import (
	"context"
	"fmt"
	"strings"

	"tdrill/internal/modules/prefs/domain"
	prefsout "tdrill/internal/modules/prefs/port/out"
	apperrors "tdrill/internal/platform/errors"
)

type PrefsService struct {
	store prefsout.PrefsStore
}

func NewPrefsService(store prefsout.PrefsStore) *PrefsService {
	return &PrefsService{store: store}
}

func (s *PrefsService) Get(ctx context.Context) (domain.Prefs, error) {
	return s.store.Load(ctx)
}

// SetLabels stores the preset. Custom strings are kept only for CUSTOM.
func (s *PrefsService) SetLabels(ctx context.Context, preset domain.Preset, customThreat, customNonThreat string) (domain.LabelConfig, error) {
	prefs, err := s.store.Load(ctx)
	if err != nil {
		return domain.LabelConfig{}, err
	}
	cfg := domain.LabelConfig{Preset: preset}
	if preset == domain.PresetCustom {
		cfg.CustomThreat = strings.TrimSpace(customThreat)
		cfg.CustomNonThreat = strings.TrimSpace(customNonThreat)
	}
	prefs.Labels = cfg
	if err := s.store.Save(ctx, prefs); err != nil {
		return domain.LabelConfig{}, err
	}
	return cfg, nil
}

func (s *PrefsService) SetSessionDefaults(ctx context.Context, defaults domain.SessionDefaults) (domain.SessionDefaults, error) {
	if err := defaults.Validate(); err != nil {
		return domain.SessionDefaults{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	prefs, err := s.store.Load(ctx)
	if err != nil {
		return domain.SessionDefaults{}, err
	}
	prefs.Session = defaults
	if err := s.store.Save(ctx, prefs); err != nil {
		return domain.SessionDefaults{}, err
	}
	return defaults, nil
}
