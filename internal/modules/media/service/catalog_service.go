package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"tdrill/internal/modules/media/domain"
	mediaout "tdrill/internal/modules/media/port/out"
	"tdrill/internal/platform/clock"
	apperrors "tdrill/internal/platform/errors"
	"tdrill/internal/platform/id"
	"tdrill/internal/platform/slug"
)

// MaxImportBytes bounds a single imported file.
const MaxImportBytes = 512 << 20

type CatalogService struct {
	clock     clock.Clock
	idGen     id.Generator
	manifest  mediaout.ManifestStore
	scanner   mediaout.MediaScanner
	users     mediaout.UserMediaStore
	overrides mediaout.OverrideStore
	cache     mediaout.DisplayCache
	launcher  mediaout.Launcher
	log       zerolog.Logger

	// serializes read-modify-write of overrides
	mu sync.Mutex
}

func NewCatalogService(
	clock clock.Clock,
	idGen id.Generator,
	manifest mediaout.ManifestStore,
	scanner mediaout.MediaScanner,
	users mediaout.UserMediaStore,
	overrides mediaout.OverrideStore,
	cache mediaout.DisplayCache,
	launcher mediaout.Launcher,
	logger zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		clock:     clock,
		idGen:     idGen,
		manifest:  manifest,
		scanner:   scanner,
		users:     users,
		overrides: overrides,
		cache:     cache,
		launcher:  launcher,
		log:       logger,
	}
}

// BuiltIn returns the manifest items, scanning the media root when no
// manifest exists.
func (s *CatalogService) BuiltIn(ctx context.Context) ([]domain.Item, error) {
	manifest, err := s.manifest.Load(ctx)
	if err == nil {
		return manifest.Items, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	s.log.Debug().Str("root", s.scanner.Root()).Msg("no manifest, scanning media root")
	return s.scanner.Scan(ctx)
}

// Entries assembles the full catalog with overrides applied.
func (s *CatalogService) Entries(ctx context.Context) ([]domain.Entry, error) {
	builtIn, err := s.BuiltIn(ctx)
	if err != nil {
		return nil, fmt.Errorf("load built-in media: %w", err)
	}
	userMedia, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list user media: %w", err)
	}
	user := make([]domain.Item, 0, len(userMedia))
	for _, m := range userMedia {
		user = append(user, m.Item())
	}
	overrides, err := s.overrideMap(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Assemble(builtIn, user, overrides), nil
}

func (s *CatalogService) overrideMap(ctx context.Context) (map[string]domain.Override, error) {
	list, err := s.overrides.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	out := make(map[string]domain.Override, len(list))
	for _, o := range list {
		out[o.Location] = o
	}
	return out, nil
}

func (s *CatalogService) Eligible(ctx context.Context, includeVideos, includePhotos bool) ([]domain.Item, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}
	items := domain.Eligible(entries, includeVideos, includePhotos)
	s.log.Debug().
		Bool("videos", includeVideos).
		Bool("photos", includePhotos).
		Int("eligible", len(items)).
		Int("catalog", len(entries)).
		Msg("eligible media")
	return items, nil
}

func (s *CatalogService) Gallery(ctx context.Context, filter domain.Filter) ([]domain.Entry, domain.Counts, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, domain.Counts{}, err
	}
	return domain.Select(entries, filter), domain.Count(entries), nil
}

func (s *CatalogService) Entry(ctx context.Context, location string) (domain.Entry, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return domain.Entry{}, err
	}
	for _, e := range entries {
		if e.Location == location {
			return e, nil
		}
	}
	return domain.Entry{}, fmt.Errorf("%w: media %s", apperrors.ErrNotFound, location)
}

// Rescan rebuilds the manifest from the media root.
func (s *CatalogService) Rescan(ctx context.Context) (domain.Manifest, error) {
	items, err := s.scanner.Scan(ctx)
	if err != nil {
		return domain.Manifest{}, fmt.Errorf("scan media root: %w", err)
	}
	manifest := domain.Manifest{GeneratedAt: s.clock.Now(), Root: s.scanner.Root(), Items: items}
	if err := s.manifest.Save(ctx, manifest); err != nil {
		return domain.Manifest{}, err
	}
	s.log.Info().Int("items", len(items)).Str("manifest", s.manifest.Path()).Msg("manifest written")
	return manifest, nil
}

func (s *CatalogService) Import(ctx context.Context, name string, kind domain.Kind, class domain.Classification, data []byte) (domain.UserMedia, error) {
	name = strings.TrimSpace(filepath.Base(name))
	if name == "" || name == "." {
		return domain.UserMedia{}, fmt.Errorf("%w: file name is required", apperrors.ErrInvalidInput)
	}
	if len(data) == 0 {
		return domain.UserMedia{}, fmt.Errorf("%w: %s is empty", apperrors.ErrInvalidInput, name)
	}
	if len(data) > MaxImportBytes {
		return domain.UserMedia{}, fmt.Errorf("%w: %s exceeds %d bytes", apperrors.ErrInvalidInput, name, MaxImportBytes)
	}
	if err := kind.Validate(); err != nil {
		return domain.UserMedia{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if !kind.Accepts(name) {
		return domain.UserMedia{}, fmt.Errorf("%w: %s as %s", apperrors.ErrUnsupportedMedia, name, kind)
	}
	media := domain.UserMedia{
		ID:         s.idGen.New(),
		Name:       name,
		Kind:       kind,
		Class:      class,
		Size:       int64(len(data)),
		ImportedAt: s.clock.Now(),
	}
	if err := media.Validate(); err != nil {
		return domain.UserMedia{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if err := s.users.Save(ctx, media, data); err != nil {
		return domain.UserMedia{}, err
	}
	s.log.Info().Str("location", media.Location()).Str("name", name).Int64("bytes", media.Size).Msg("user media imported")
	return media, nil
}

// Remove deletes an imported item together with its override and any
// materialized copy. Built-in media cannot be removed.
func (s *CatalogService) Remove(ctx context.Context, location string) error {
	id, ok := domain.UserID(location)
	if !ok {
		return fmt.Errorf("%w: only imported media can be removed, got %q", apperrors.ErrInvalidInput, location)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	err := s.overrides.Delete(ctx, location)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if err := s.cache.Evict(location); err != nil {
		s.log.Warn().Err(err).Str("location", location).Msg("evict display cache")
	}
	s.log.Info().Str("location", location).Msg("user media removed")
	return nil
}

func (s *CatalogService) SetExcluded(ctx context.Context, location string, excluded bool) (domain.Entry, error) {
	return s.mutateOverride(ctx, location, func(o domain.Override) domain.Override {
		return o.WithExcluded(excluded, s.clock.Now())
	})
}

// SetClass overrides the classification; nil restores the original.
func (s *CatalogService) SetClass(ctx context.Context, location string, class *domain.Classification) (domain.Entry, error) {
	if class != nil {
		if err := class.Validate(); err != nil {
			return domain.Entry{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
	}
	return s.mutateOverride(ctx, location, func(o domain.Override) domain.Override {
		return o.WithClass(class, s.clock.Now())
	})
}

func (s *CatalogService) ClearOverride(ctx context.Context, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overrides.Delete(ctx, location)
}

func (s *CatalogService) mutateOverride(ctx context.Context, location string, fn func(domain.Override) domain.Override) (domain.Entry, error) {
	if _, err := s.Entry(ctx, location); err != nil {
		return domain.Entry{}, err
	}

	s.mu.Lock()
	existing, err := s.overrides.Get(ctx, location)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		existing = domain.NewOverride(location, s.clock.Now())
	case err != nil:
		s.mu.Unlock()
		return domain.Entry{}, err
	}
	next := fn(existing)
	if next.Empty() {
		err = s.overrides.Delete(ctx, location)
	} else {
		err = s.overrides.Put(ctx, next)
	}
	s.mu.Unlock()
	if err != nil {
		return domain.Entry{}, err
	}
	return s.Entry(ctx, location)
}

// DisplayURL returns a file URL for the item's bytes. Imported media is
// written to the display cache once per location.
func (s *CatalogService) DisplayURL(ctx context.Context, location string) (string, error) {
	id, ok := domain.UserID(location)
	if !ok {
		path, err := s.scanner.Resolve(location)
		if err != nil {
			return "", err
		}
		return fileURL(path), nil
	}
	if path, ok := s.cache.Lookup(location); ok {
		return fileURL(path), nil
	}
	media, err := s.users.Get(ctx, id)
	if err != nil {
		return "", err
	}
	data, err := s.users.Content(ctx, id)
	if err != nil {
		return "", err
	}
	path, err := s.cache.Materialize(ctx, location, id+"-"+slug.FileName(media.Name), data)
	if err != nil {
		return "", err
	}
	return fileURL(path), nil
}

// Open resolves the item and hands it to the OS viewer.
func (s *CatalogService) Open(ctx context.Context, location string) (string, error) {
	target, err := s.DisplayURL(ctx, location)
	if err != nil {
		return "", err
	}
	if err := s.launcher.Open(ctx, target); err != nil {
		return "", err
	}
	return target, nil
}

func fileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

func (s *CatalogService) ManifestPath() string { return s.manifest.Path() }
