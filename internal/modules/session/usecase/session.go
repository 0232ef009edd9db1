package usecase

import (
	"context"
	"fmt"

	"tdrill/internal/modules/session/domain"
	sessiondto "tdrill/internal/modules/session/dto"
	sessionin "tdrill/internal/modules/session/port/in"
	"tdrill/internal/modules/session/service"
	apperrors "tdrill/internal/platform/errors"
)

type Interactor struct {
	engine *service.Engine
}

func NewInteractor(engine *service.Engine) sessionin.Usecase {
	return &Interactor{engine: engine}
}

func (i *Interactor) Start(ctx context.Context, input sessiondto.StartInput, onComplete func()) (sessionin.Session, error) {
	run, err := i.engine.Start(ctx, domain.Config{
		IncludeVideos:   input.IncludeVideos,
		IncludePhotos:   input.IncludePhotos,
		DurationMinutes: input.DurationMinutes,
	}, onComplete)
	if err != nil {
		return nil, err
	}
	return &runHandle{run: run}, nil
}

type runHandle struct {
	run *service.Run
}

func (h *runHandle) Snapshot() sessiondto.Snapshot {
	st := h.run.Snapshot()
	out := sessiondto.Snapshot{
		IsPlaying:            st.IsPlaying,
		TimeRemainingSeconds: st.TimeRemainingSeconds,
		TotalResponses:       st.TotalResponses,
		CorrectResponses:     st.CorrectResponses,
		ShowFeedback:         st.ShowFeedback,
		HasResponded:         st.HasResponded,
		IsSessionComplete:    st.IsSessionComplete,
		Draw:                 st.Draw,
	}
	if st.Current != nil {
		item := toItemOutput(*st.Current)
		out.Current = &item
	}
	if st.LastResult != nil {
		out.LastResult = &sessiondto.ResultOutput{
			IsCorrect:      st.LastResult.IsCorrect,
			Response:       string(st.LastResult.Response),
			Actual:         string(st.LastResult.Actual),
			ReactionTimeMs: st.LastResult.ReactionTimeMs,
		}
	}
	return out
}

func (h *runHandle) SubmitResponse(response string) error {
	parsed, err := domain.ParseUserResponse(response)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	h.run.SubmitResponse(parsed)
	return nil
}

func (h *runHandle) AcknowledgeFeedback()      { h.run.AcknowledgeFeedback() }
func (h *runHandle) NotifyMediaPlaybackEnded() { h.run.NotifyMediaPlaybackEnded() }
func (h *runHandle) Stop(ctx context.Context)  { h.run.Stop(ctx) }

func (h *runHandle) PeekNextItem() (sessiondto.MediaItemOutput, bool) {
	item, ok := h.run.PeekNextItem()
	if !ok {
		return sessiondto.MediaItemOutput{}, false
	}
	return toItemOutput(item), true
}

func (h *runHandle) ResolveURL(ctx context.Context, item sessiondto.MediaItemOutput) (string, error) {
	return h.run.ResolveURL(ctx, domain.MediaItem{
		Location: item.Location,
		Kind:     domain.MediaKind(item.Kind),
		Class:    domain.Classification(item.Class),
	})
}

func toItemOutput(item domain.MediaItem) sessiondto.MediaItemOutput {
	return sessiondto.MediaItemOutput{Location: item.Location, Kind: string(item.Kind), Class: string(item.Class)}
}
