package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"tdrill/internal/modules/media/domain"
	mediaout "tdrill/internal/modules/media/port/out"
	apperrors "tdrill/internal/platform/errors"
)

// FSScanner reads the built-in catalog from a media root laid out as
// {videos,photos}/{threat,non_threat}/<file>.
type FSScanner struct {
	root string
}

func NewFSScanner(root string) mediaout.MediaScanner {
	return &FSScanner{root: root}
}

func (s *FSScanner) Root() string { return s.root }

func (s *FSScanner) Scan(ctx context.Context) ([]domain.Item, error) {
	var items []domain.Item
	for _, kind := range []domain.Kind{domain.KindVideo, domain.KindPhoto} {
		for _, class := range []domain.Classification{domain.Threat, domain.NonThreat} {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			dir := filepath.Join(s.root, kind.Dir(), class.Dir())
			entries, err := os.ReadDir(dir)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", dir, err)
			}
			for _, e := range entries {
				name := e.Name()
				if e.IsDir() || strings.HasPrefix(name, ".") || !kind.Accepts(name) {
					continue
				}
				items = append(items, domain.Item{
					Location: domain.BuiltInLocation(kind, class, name),
					Name:     name,
					Kind:     kind,
					Class:    class,
				})
			}
		}
	}
	return items, nil
}

// Resolve rejects locations that would escape the media root.
func (s *FSScanner) Resolve(location string) (string, error) {
	if !strings.HasPrefix(location, "/") {
		return "", fmt.Errorf("%w: built-in location %q must start with /", apperrors.ErrInvalidInput, location)
	}
	clean := path.Clean(location)
	if clean != location || clean == "/" {
		return "", fmt.Errorf("%w: built-in location %q", apperrors.ErrInvalidInput, location)
	}
	full := filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: media file %s", apperrors.ErrNotFound, location)
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", full, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", apperrors.ErrInvalidInput, location)
	}
	return full, nil
}
