package in

import (
	"context"

	"tdrill/internal/modules/session/dto"
)

type Usecase interface {
	// Start fetches the eligible pool and begins a timed run. onComplete is
	// invoked immediately when no media is eligible, otherwise once the
	// caller acknowledges a completed run.
	Start(ctx context.Context, input dto.StartInput, onComplete func()) (Session, error)
}

// Session is one running training session.
type Session interface {
	Snapshot() dto.Snapshot
	SubmitResponse(response string) error
	AcknowledgeFeedback()
	NotifyMediaPlaybackEnded()
	Stop(ctx context.Context)
	PeekNextItem() (dto.MediaItemOutput, bool)
	ResolveURL(ctx context.Context, item dto.MediaItemOutput) (string, error)
}
