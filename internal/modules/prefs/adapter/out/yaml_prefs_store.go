package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"tdrill/internal/modules/prefs/domain"
	prefsout "tdrill/internal/modules/prefs/port/out"
)

type YAMLPrefsStore struct {
	path string
}

func NewYAMLPrefsStore(path string) prefsout.PrefsStore {
	return &YAMLPrefsStore{path: path}
}

func (s *YAMLPrefsStore) Load(_ context.Context) (domain.Prefs, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Default(), nil
	}
	if err != nil {
		return domain.Prefs{}, fmt.Errorf("read prefs: %w", err)
	}
	prefs := domain.Default()
	if err := yaml.Unmarshal(raw, &prefs); err != nil {
		return domain.Prefs{}, fmt.Errorf("decode prefs %s: %w", s.path, err)
	}
	return prefs.Normalize(), nil
}

func (s *YAMLPrefsStore) Save(_ context.Context, prefs domain.Prefs) error {
	raw, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}
