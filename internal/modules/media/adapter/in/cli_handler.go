package in

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"tdrill/internal/modules/media/dto"
	mediain "tdrill/internal/modules/media/port/in"
)

type CLIHandler struct {
	usecase mediain.Usecase
}

func NewCLIHandler(usecase mediain.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context, kind, class, source string, excluded *bool, query string) (dto.GalleryOutput, error) {
	return h.usecase.Gallery(ctx, dto.GalleryInput{Kind: kind, Class: class, Source: source, Excluded: excluded, Query: query})
}

func (h CLIHandler) Scan(ctx context.Context) (dto.ScanOutput, error) {
	return h.usecase.Scan(ctx)
}

// Import reads a file from disk into the user media store.
func (h CLIHandler) Import(ctx context.Context, path, kind, class string) (dto.EntryOutput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dto.EntryOutput{}, fmt.Errorf("read %s: %w", path, err)
	}
	return h.usecase.Import(ctx, dto.ImportInput{Name: filepath.Base(path), Data: data, Kind: kind, Class: class})
}

func (h CLIHandler) Remove(ctx context.Context, location string) error {
	return h.usecase.Remove(ctx, location)
}

func (h CLIHandler) SetExcluded(ctx context.Context, excluded bool, locations ...string) ([]dto.EntryOutput, error) {
	return h.usecase.SetExcluded(ctx, dto.SetExcludedInput{Locations: locations, Excluded: excluded})
}

func (h CLIHandler) Classify(ctx context.Context, class string, locations ...string) ([]dto.EntryOutput, error) {
	return h.usecase.SetClass(ctx, dto.SetClassInput{Locations: locations, Class: class})
}

func (h CLIHandler) Reset(ctx context.Context, locations ...string) error {
	return h.usecase.ResetOverrides(ctx, locations)
}

func (h CLIHandler) Open(ctx context.Context, location string) (string, error) {
	return h.usecase.Open(ctx, location)
}
