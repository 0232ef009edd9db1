package in

import (
	"context"

	"tdrill/internal/modules/media/dto"
)

type Usecase interface {
	Eligible(ctx context.Context, input dto.EligibleInput) ([]dto.ItemOutput, error)
	ResolveDisplayURL(ctx context.Context, item dto.ItemOutput) (string, error)
	Gallery(ctx context.Context, input dto.GalleryInput) (dto.GalleryOutput, error)
	Scan(ctx context.Context) (dto.ScanOutput, error)
	Import(ctx context.Context, input dto.ImportInput) (dto.EntryOutput, error)
	Remove(ctx context.Context, location string) error
	SetExcluded(ctx context.Context, input dto.SetExcludedInput) ([]dto.EntryOutput, error)
	SetClass(ctx context.Context, input dto.SetClassInput) ([]dto.EntryOutput, error)
	ResetOverrides(ctx context.Context, locations []string) error
	Open(ctx context.Context, location string) (string, error)
}
