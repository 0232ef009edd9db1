package in

import (
	"context"

	sessiondto "tdrill/internal/modules/session/dto"
	sessionin "tdrill/internal/modules/session/port/in"
)

type TUIHandler struct {
	usecase sessionin.Usecase
}

func NewTUIHandler(usecase sessionin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Start(ctx context.Context, includeVideos, includePhotos bool, durationMinutes int, onComplete func()) (sessionin.Session, error) {
	return h.usecase.Start(ctx, sessiondto.StartInput{
		IncludeVideos:   includeVideos,
		IncludePhotos:   includePhotos,
		DurationMinutes: durationMinutes,
	}, onComplete)
}
