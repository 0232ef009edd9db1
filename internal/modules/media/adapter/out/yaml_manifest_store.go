package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"tdrill/internal/modules/media/domain"
	mediaout "tdrill/internal/modules/media/port/out"
	apperrors "tdrill/internal/platform/errors"
)

type YAMLManifestStore struct {
	path string
}

func NewYAMLManifestStore(path string) mediaout.ManifestStore {
	return &YAMLManifestStore{path: path}
}

func (s *YAMLManifestStore) Path() string { return s.path }

func (s *YAMLManifestStore) Load(_ context.Context) (domain.Manifest, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Manifest{}, fmt.Errorf("%w: manifest %s", apperrors.ErrNotFound, s.path)
	}
	if err != nil {
		return domain.Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var manifest domain.Manifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return domain.Manifest{}, fmt.Errorf("decode manifest %s: %w", s.path, err)
	}
	for _, item := range manifest.Items {
		if err := item.Validate(); err != nil {
			return domain.Manifest{}, fmt.Errorf("manifest %s: %w", s.path, err)
		}
	}
	return manifest, nil
}

// Save writes through a temp file so readers never see a partial manifest.
func (s *YAMLManifestStore) Save(_ context.Context, manifest domain.Manifest) error {
	raw, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}
