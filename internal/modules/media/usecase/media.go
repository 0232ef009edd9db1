package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tdrill/internal/modules/media/domain"
	"tdrill/internal/modules/media/dto"
	mediain "tdrill/internal/modules/media/port/in"
	"tdrill/internal/modules/media/service"
	apperrors "tdrill/internal/platform/errors"
)

type Interactor struct {
	svc *service.CatalogService
}

func NewInteractor(svc *service.CatalogService) mediain.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Eligible(ctx context.Context, input dto.EligibleInput) ([]dto.ItemOutput, error) {
	items, err := i.svc.Eligible(ctx, input.IncludeVideos, input.IncludePhotos)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemOutput, 0, len(items))
	for _, item := range items {
		out = append(out, dto.ItemOutput{Location: item.Location, Kind: string(item.Kind), Class: string(item.Class)})
	}
	return out, nil
}

func (i *Interactor) ResolveDisplayURL(ctx context.Context, item dto.ItemOutput) (string, error) {
	return i.svc.DisplayURL(ctx, item.Location)
}

func (i *Interactor) Gallery(ctx context.Context, input dto.GalleryInput) (dto.GalleryOutput, error) {
	filter, err := toFilter(input)
	if err != nil {
		return dto.GalleryOutput{}, err
	}
	entries, counts, err := i.svc.Gallery(ctx, filter)
	if err != nil {
		return dto.GalleryOutput{}, err
	}
	out := dto.GalleryOutput{
		Entries:  make([]dto.EntryOutput, 0, len(entries)),
		Total:    counts.Total,
		Videos:   counts.Videos,
		Photos:   counts.Photos,
		Threat:   counts.Threat,
		Excluded: counts.Excluded,
		User:     counts.User,
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, toEntryOutput(e))
	}
	return out, nil
}

func (i *Interactor) Scan(ctx context.Context) (dto.ScanOutput, error) {
	manifest, err := i.svc.Rescan(ctx)
	if err != nil {
		return dto.ScanOutput{}, err
	}
	out := dto.ScanOutput{ManifestPath: i.svc.ManifestPath(), GeneratedAt: manifest.GeneratedAt}
	for _, item := range manifest.Items {
		if item.Kind == domain.KindVideo {
			out.Videos++
		} else {
			out.Photos++
		}
	}
	return out, nil
}

func (i *Interactor) Import(ctx context.Context, input dto.ImportInput) (dto.EntryOutput, error) {
	kind, err := domain.ParseKind(input.Kind)
	if err != nil {
		kind, err = guessKind(input.Name, input.Kind)
		if err != nil {
			return dto.EntryOutput{}, err
		}
	}
	class, err := domain.ParseClassification(input.Class)
	if err != nil {
		return dto.EntryOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	media, err := i.svc.Import(ctx, input.Name, kind, class, input.Data)
	if err != nil {
		return dto.EntryOutput{}, err
	}
	return toEntryOutput(domain.Entry{Item: media.Item(), Source: domain.SourceUser, OriginalClass: media.Class}), nil
}

// guessKind infers the kind from the extension when none was given.
func guessKind(name, raw string) (domain.Kind, error) {
	if strings.TrimSpace(raw) != "" {
		return "", fmt.Errorf("%w: invalid media kind %q", apperrors.ErrInvalidInput, raw)
	}
	kind, ok := domain.KindFor(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", apperrors.ErrUnsupportedMedia, name)
	}
	return kind, nil
}

func (i *Interactor) Remove(ctx context.Context, location string) error {
	return i.svc.Remove(ctx, strings.TrimSpace(location))
}

func (i *Interactor) SetExcluded(ctx context.Context, input dto.SetExcludedInput) ([]dto.EntryOutput, error) {
	if len(input.Locations) == 0 {
		return nil, fmt.Errorf("%w: at least one location is required", apperrors.ErrInvalidInput)
	}
	out := make([]dto.EntryOutput, 0, len(input.Locations))
	for _, loc := range input.Locations {
		entry, err := i.svc.SetExcluded(ctx, strings.TrimSpace(loc), input.Excluded)
		if err != nil {
			return out, err
		}
		out = append(out, toEntryOutput(entry))
	}
	return out, nil
}

func (i *Interactor) SetClass(ctx context.Context, input dto.SetClassInput) ([]dto.EntryOutput, error) {
	if len(input.Locations) == 0 {
		return nil, fmt.Errorf("%w: at least one location is required", apperrors.ErrInvalidInput)
	}
	var class *domain.Classification
	if raw := strings.TrimSpace(input.Class); raw != "" && !strings.EqualFold(raw, "none") {
		parsed, err := domain.ParseClassification(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		class = &parsed
	}
	out := make([]dto.EntryOutput, 0, len(input.Locations))
	for _, loc := range input.Locations {
		entry, err := i.svc.SetClass(ctx, strings.TrimSpace(loc), class)
		if err != nil {
			return out, err
		}
		out = append(out, toEntryOutput(entry))
	}
	return out, nil
}

func (i *Interactor) ResetOverrides(ctx context.Context, locations []string) error {
	var errs []error
	for _, loc := range locations {
		if err := i.svc.ClearOverride(ctx, strings.TrimSpace(loc)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", loc, err))
		}
	}
	return errors.Join(errs...)
}

func (i *Interactor) Open(ctx context.Context, location string) (string, error) {
	return i.svc.Open(ctx, strings.TrimSpace(location))
}

func toFilter(input dto.GalleryInput) (domain.Filter, error) {
	f := domain.Filter{Excluded: input.Excluded, Query: input.Query}
	if raw := strings.TrimSpace(input.Kind); raw != "" {
		kind, err := domain.ParseKind(raw)
		if err != nil {
			return domain.Filter{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		f.Kind = kind
	}
	if raw := strings.TrimSpace(input.Class); raw != "" {
		class, err := domain.ParseClassification(raw)
		if err != nil {
			return domain.Filter{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		f.Class = class
	}
	switch strings.ToLower(strings.TrimSpace(input.Source)) {
	case "":
	case "builtin", "built-in", "built_in":
		f.Source = domain.SourceBuiltIn
	case "user":
		f.Source = domain.SourceUser
	default:
		return domain.Filter{}, fmt.Errorf("%w: invalid source %q", apperrors.ErrInvalidInput, input.Source)
	}
	return f, nil
}

func toEntryOutput(e domain.Entry) dto.EntryOutput {
	return dto.EntryOutput{
		Location:      e.Location,
		Name:          e.Name,
		Kind:          string(e.Kind),
		Class:         string(e.Class),
		OriginalClass: string(e.OriginalClass),
		Source:        string(e.Source),
		Excluded:      e.Excluded,
		Overridden:    e.Overridden,
	}
}
