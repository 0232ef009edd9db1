package in

import (
	"context"

	"tdrill/internal/modules/media/dto"
	mediain "tdrill/internal/modules/media/port/in"
)

type TUIHandler struct {
	usecase mediain.Usecase
}

func NewTUIHandler(usecase mediain.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Gallery(ctx context.Context, input dto.GalleryInput) (dto.GalleryOutput, error) {
	return h.usecase.Gallery(ctx, input)
}

func (h TUIHandler) ToggleExcluded(ctx context.Context, entry dto.EntryOutput) (dto.EntryOutput, error) {
	out, err := h.usecase.SetExcluded(ctx, dto.SetExcludedInput{Locations: []string{entry.Location}, Excluded: !entry.Excluded})
	if err != nil || len(out) == 0 {
		return dto.EntryOutput{}, err
	}
	return out[0], nil
}

// Reclassify flips the effective classification, dropping the override when
// it would match the original.
func (h TUIHandler) Reclassify(ctx context.Context, entry dto.EntryOutput) (dto.EntryOutput, error) {
	target := "THREAT"
	if entry.Class == "THREAT" {
		target = "NON_THREAT"
	}
	if target == entry.OriginalClass {
		target = ""
	}
	out, err := h.usecase.SetClass(ctx, dto.SetClassInput{Locations: []string{entry.Location}, Class: target})
	if err != nil || len(out) == 0 {
		return dto.EntryOutput{}, err
	}
	return out[0], nil
}

func (h TUIHandler) Reset(ctx context.Context, entry dto.EntryOutput) error {
	return h.usecase.ResetOverrides(ctx, []string{entry.Location})
}

func (h TUIHandler) Open(ctx context.Context, location string) (string, error) {
	return h.usecase.Open(ctx, location)
}
