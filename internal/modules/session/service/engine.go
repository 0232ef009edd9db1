package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tdrill/internal/modules/session/domain"
	sessionout "tdrill/internal/modules/session/port/out"
	"tdrill/internal/platform/clock"
	apperrors "tdrill/internal/platform/errors"
	"tdrill/internal/platform/timer"
)

const (
	TickInterval = time.Second
	// AdvanceDelay leaves room for the feedback transition before the next
	// item replaces the current one.
	AdvanceDelay = 100 * time.Millisecond
)

type Option func(*Engine)

// WithRandom replaces the uniform source used for selection.
func WithRandom(intn func(n int) int) Option {
	return func(e *Engine) { e.intn = intn }
}

func WithObserver(observer sessionout.Observer) Option {
	return func(e *Engine) { e.observer = observer }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.log = logger }
}

// Engine starts training runs over a media catalog and reports finished
// runs to a stats sink.
type Engine struct {
	catalog  sessionout.MediaCatalog
	sink     sessionout.StatsSink
	observer sessionout.Observer
	clock    clock.Clock
	sched    timer.Scheduler
	intn     func(n int) int
	log      zerolog.Logger
}

func NewEngine(catalog sessionout.MediaCatalog, sink sessionout.StatsSink, clk clock.Clock, sched timer.Scheduler, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		sink:    sink,
		clock:   clk,
		sched:   sched,
		intn:    rand.IntN,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start fetches the eligible pool once and begins the countdown. An empty or
// unreadable pool invokes onComplete immediately and returns
// ErrNoEligibleMedia without scheduling anything.
func (e *Engine) Start(ctx context.Context, cfg domain.Config, onComplete func()) (*Run, error) {
	if cfg.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive, got %d", apperrors.ErrInvalidInput, cfg.DurationMinutes)
	}
	pool, err := e.catalog.FetchEligibleMedia(ctx, cfg.IncludeVideos, cfg.IncludePhotos)
	if err != nil {
		e.log.Error().Err(err).Msg("fetch eligible media")
		notify(onComplete)
		return nil, fmt.Errorf("fetch eligible media: %w", errors.Join(apperrors.ErrNoEligibleMedia, err))
	}
	if len(pool) == 0 {
		e.log.Info().Bool("videos", cfg.IncludeVideos).Bool("photos", cfg.IncludePhotos).Msg("no eligible media")
		notify(onComplete)
		return nil, apperrors.ErrNoEligibleMedia
	}

	r := &Run{
		engine:     e,
		selector:   domain.NewSelector(pool, e.intn),
		state:      domain.NewState(cfg.DurationMinutes * 60),
		onComplete: onComplete,
		log:        e.log.With().Int("pool", len(pool)).Logger(),
	}
	r.log.Info().Int("duration_min", cfg.DurationMinutes).Msg("session started")

	r.mu.Lock()
	r.cancelTick = e.sched.Every(TickInterval, r.tick)
	eff := r.drawLocked()
	r.mu.Unlock()
	r.run(ctx, eff)
	return r, nil
}

// Run is a single session. Every mutation goes through update, so timer
// callbacks and user input never interleave.
type Run struct {
	engine     *Engine
	log        zerolog.Logger
	onComplete func()

	mu            sync.Mutex
	state         domain.State
	selector      *domain.Selector
	cancelTick    timer.Cancel
	cancelAdvance timer.Cancel
	finalized     bool
	notified      bool
	stopped       bool
}

// effects are applied after the state lock is released.
type effects struct {
	drawn    *domain.MediaItem
	recorded *recorded
	emit     *domain.Stats
	complete bool
}

type recorded struct {
	item   domain.MediaItem
	result domain.ResponseResult
}

func (r *Run) update(ctx context.Context, fn func() effects) {
	r.mu.Lock()
	eff := fn()
	r.mu.Unlock()
	r.run(ctx, eff)
}

func (r *Run) run(ctx context.Context, eff effects) {
	obs := r.engine.observer
	if eff.drawn != nil && obs != nil {
		obs.ItemDrawn(*eff.drawn)
	}
	if eff.recorded != nil && obs != nil {
		obs.ResponseRecorded(eff.recorded.item, eff.recorded.result)
	}
	if eff.emit != nil {
		r.emit(ctx, *eff.emit)
	}
	if eff.complete {
		notify(r.onComplete)
	}
}

func (r *Run) emit(ctx context.Context, stats domain.Stats) {
	if obs := r.engine.observer; obs != nil {
		obs.SessionFinished(stats)
	}
	evt := r.log.Info().
		Int("total", stats.TotalResponses).
		Int("correct", stats.CorrectResponses)
	if stats.AverageReactionMs != nil {
		evt = evt.Int64("avg_reaction_ms", *stats.AverageReactionMs)
	}
	evt.Msg("session finalized")
	if r.engine.sink == nil {
		return
	}
	if err := r.engine.sink.RecordSession(ctx, stats); err != nil {
		r.log.Error().Err(err).Msg("record session stats")
	}
}

// Snapshot returns a copy of the current state.
func (r *Run) Snapshot() domain.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

func (r *Run) SubmitResponse(response domain.UserResponse) {
	r.update(context.Background(), func() effects {
		if r.stopped || r.state.IsSessionComplete {
			return effects{}
		}
		result, ok := r.state.Respond(response, r.engine.clock.Now())
		if !ok {
			return effects{}
		}
		return effects{recorded: &recorded{item: *r.state.Current, result: result}}
	})
}

func (r *Run) NotifyMediaPlaybackEnded() {
	r.update(context.Background(), func() effects {
		if r.stopped || r.state.IsSessionComplete {
			return effects{}
		}
		result, ok := r.state.PlaybackEnded()
		if !ok {
			return effects{}
		}
		return effects{recorded: &recorded{item: *r.state.Current, result: result}}
	})
}

// AcknowledgeFeedback hides the feedback and schedules the next draw. Once
// the session is complete it invokes the completion callback instead.
func (r *Run) AcknowledgeFeedback() {
	r.update(context.Background(), func() effects {
		if r.stopped {
			return effects{}
		}
		if r.state.IsSessionComplete {
			if r.notified {
				return effects{}
			}
			r.notified = true
			return effects{complete: true}
		}
		if !r.state.ShowFeedback {
			return effects{}
		}
		r.state.ShowFeedback = false
		if r.cancelAdvance != nil {
			r.cancelAdvance()
		}
		r.cancelAdvance = r.engine.sched.After(AdvanceDelay, r.advance)
		return effects{}
	})
}

// Stop tears down both timers. A run with at least one response that has
// not been finalized yet is finalized and emitted.
func (r *Run) Stop(ctx context.Context) {
	r.update(ctx, func() effects {
		if r.stopped {
			return effects{}
		}
		r.stopped = true
		r.cancelTimersLocked()
		r.state.IsPlaying = false
		if r.state.TotalResponses == 0 {
			return effects{}
		}
		return effects{emit: r.finalizeLocked()}
	})
}

// PeekNextItem previews the next draw without committing it.
func (r *Run) PeekNextItem() (domain.MediaItem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selector.Peek()
}

func (r *Run) ResolveURL(ctx context.Context, item domain.MediaItem) (string, error) {
	return r.engine.catalog.ResolveDisplayURL(ctx, item)
}

func (r *Run) tick() {
	r.update(context.Background(), func() effects {
		if r.stopped || !r.state.Tick() {
			return effects{}
		}
		r.cancelTimersLocked()
		return effects{emit: r.finalizeLocked()}
	})
}

func (r *Run) advance() {
	r.update(context.Background(), func() effects {
		r.cancelAdvance = nil
		if r.stopped || r.state.IsSessionComplete {
			return effects{}
		}
		return r.drawLocked()
	})
}

func (r *Run) drawLocked() effects {
	item, ok := r.selector.Draw()
	if !ok {
		return effects{}
	}
	r.state.Present(item, r.engine.clock.Now())
	return effects{drawn: &item}
}

func (r *Run) finalizeLocked() *domain.Stats {
	if r.finalized {
		return nil
	}
	r.finalized = true
	stats := r.state.Stats(r.engine.clock.Now().UTC())
	return &stats
}

func (r *Run) cancelTimersLocked() {
	if r.cancelTick != nil {
		r.cancelTick()
		r.cancelTick = nil
	}
	if r.cancelAdvance != nil {
		r.cancelAdvance()
		r.cancelAdvance = nil
	}
}

func notify(fn func()) {
	if fn != nil {
		fn()
	}
}
