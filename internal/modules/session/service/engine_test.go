package service_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tdrill/internal/modules/session/domain"
	"tdrill/internal/modules/session/service"
	apperrors "tdrill/internal/platform/errors"
	"tdrill/internal/platform/timer"
)

var (
	photoThreat = domain.MediaItem{Location: "A", Kind: domain.KindPhoto, Class: domain.Threat}
	photoSafe   = domain.MediaItem{Location: "B", Kind: domain.KindPhoto, Class: domain.NonThreat}
	videoSafe   = domain.MediaItem{Location: "V", Kind: domain.KindVideo, Class: domain.NonThreat}
)

type fakeCatalog struct {
	items []domain.MediaItem
	err   error
	calls int
	flags [2]bool
}

func (f *fakeCatalog) FetchEligibleMedia(_ context.Context, includeVideos, includePhotos bool) ([]domain.MediaItem, error) {
	f.calls++
	f.flags = [2]bool{includeVideos, includePhotos}
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.MediaItem
	for _, item := range f.items {
		if (item.Kind == domain.KindVideo && includeVideos) || (item.Kind == domain.KindPhoto && includePhotos) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ResolveDisplayURL(_ context.Context, item domain.MediaItem) (string, error) {
	return "file:///media" + item.Location, nil
}

type fakeSink struct {
	mu       sync.Mutex
	recorded []domain.Stats
	err      error
}

func (f *fakeSink) RecordSession(_ context.Context, stats domain.Stats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, stats)
	return f.err
}

func (f *fakeSink) calls() []domain.Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Stats(nil), f.recorded...)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeObserver struct {
	drawn    []string
	results  []domain.ResponseResult
	finished int
}

func (o *fakeObserver) ItemDrawn(item domain.MediaItem) { o.drawn = append(o.drawn, item.Location) }
func (o *fakeObserver) ResponseRecorded(_ domain.MediaItem, result domain.ResponseResult) {
	o.results = append(o.results, result)
}
func (o *fakeObserver) SessionFinished(domain.Stats) { o.finished++ }

type harness struct {
	catalog *fakeCatalog
	sink    *fakeSink
	clock   *fakeClock
	sched   *timer.Manual
	engine  *service.Engine
	done    int
}

func newHarness(items []domain.MediaItem, opts ...service.Option) *harness {
	h := &harness{
		catalog: &fakeCatalog{items: items},
		sink:    &fakeSink{},
		clock:   newFakeClock(),
		sched:   timer.NewManual(),
	}
	opts = append([]service.Option{service.WithRandom(func(int) int { return 0 })}, opts...)
	h.engine = service.NewEngine(h.catalog, h.sink, h.clock, h.sched, opts...)
	return h
}

func (h *harness) start(t *testing.T, cfg domain.Config) *service.Run {
	t.Helper()
	run, err := h.engine.Start(context.Background(), cfg, func() { h.done++ })
	require.NoError(t, err)
	return run
}

func (h *harness) tick(n int) {
	for range n {
		h.sched.Tick()
	}
}

func photosOnly(minutes int) domain.Config {
	return domain.Config{IncludePhotos: true, DurationMinutes: minutes}
}

func TestStartRejectsNonPositiveDuration(t *testing.T) {
	t.Parallel()
	h := newHarness([]domain.MediaItem{photoThreat})
	_, err := h.engine.Start(context.Background(), domain.Config{IncludePhotos: true}, func() { h.done++ })
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Zero(t, h.catalog.calls)
	assert.Zero(t, h.done)
}

func TestStartWithEmptyPoolCompletesImmediately(t *testing.T) {
	t.Parallel()
	h := newHarness([]domain.MediaItem{photoThreat, videoSafe})
	_, err := h.engine.Start(context.Background(), domain.Config{DurationMinutes: 1}, func() { h.done++ })
	require.ErrorIs(t, err, apperrors.ErrNoEligibleMedia)
	assert.Equal(t, 1, h.done)
	assert.Equal(t, [2]bool{false, false}, h.catalog.flags)

	repeating, oneShot := h.sched.Pending()
	assert.Zero(t, repeating)
	assert.Zero(t, oneShot)
	assert.Empty(t, h.sink.calls())
}

func TestStartWithCatalogFailureLooksLikeEmptyPool(t *testing.T) {
	t.Parallel()
	h := newHarness(nil)
	storeErr := errors.New("store unavailable")
	h.catalog.err = storeErr

	_, err := h.engine.Start(context.Background(), photosOnly(1), func() { h.done++ })
	require.ErrorIs(t, err, apperrors.ErrNoEligibleMedia)
	require.ErrorIs(t, err, storeErr)
	assert.Equal(t, 1, h.done)
}

func TestStartDrawsFirstItem(t *testing.T) {
	t.Parallel()
	obs := &fakeObserver{}
	h := newHarness([]domain.MediaItem{photoThreat, photoSafe}, service.WithObserver(obs))
	run := h.start(t, photosOnly(1))

	snap := run.Snapshot()
	require.NotNil(t, snap.Current)
	assert.Contains(t, []string{"A", "B"}, snap.Current.Location)
	assert.Equal(t, 60, snap.TimeRemainingSeconds)
	assert.True(t, snap.IsPlaying)
	assert.False(t, snap.HasResponded)
	assert.Zero(t, snap.TotalResponses)
	assert.Equal(t, []string{snap.Current.Location}, obs.drawn)

	repeating, _ := h.sched.Pending()
	assert.Equal(t, 1, repeating)
}

func TestSingleItemPoolRedrawsAsNewDraw(t *testing.T) {
	t.Parallel()
	h := newHarness([]domain.MediaItem{photoThreat})
	run := h.start(t, photosOnly(1))
	require.Equal(t, 1, run.Snapshot().Draw)

	h.clock.Advance(200 * time.Millisecond)
	run.SubmitResponse(domain.Tap)
	run.AcknowledgeFeedback()
	h.sched.Flush()

	snap := run.Snapshot()
	assert.Equal(t, "A", snap.Current.Location)
	assert.Equal(t, 2, snap.Draw)
	assert.False(t, snap.HasResponded)

	h.clock.Advance(350 * time.Millisecond)
	run.SubmitResponse(domain.Tap)
	require.NotNil(t, run.Snapshot().LastResult.ReactionTimeMs)
	assert.EqualValues(t, 350, *run.Snapshot().LastResult.ReactionTimeMs)
}

func TestEmittedTimestampIsUTC(t *testing.T) {
	t.Parallel()
	h := newHarness([]domain.MediaItem{photoThreat})
	local := time.Date(2026, 3, 1, 11, 0, 0, 0, time.FixedZone("CET", 3600))
	h.clock.now = local
	run := h.start(t, photosOnly(1))
	run.SubmitResponse(domain.Tap)
	run.Stop(context.Background())

	calls := h.sink.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, time.UTC, calls[0].Timestamp.Location())
	assert.True(t, local.Equal(calls[0].Timestamp))
}

func TestEndToEndPhotoSession(t *testing.T) {
	t.Parallel()
	h := newHarness([]domain.MediaItem{photoThreat, photoSafe})
	run := h.start(t, photosOnly(1))
	require.Equal(t, "A", run.Snapshot().Current.Location)

	h.clock.Advance(420 * time.Millisecond)
	run.SubmitResponse(domain.Tap)
	snap := run.Snapshot()
	require.NotNil(t, snap.LastResult)
	assert.True(t, snap.LastResult.IsCorrect)
	require.NotNil(t, snap.LastResult.ReactionTimeMs)
	assert.EqualValues(t, 420, *snap.LastResult.ReactionTimeMs)
	assert.Equal(t, 1, snap.TotalResponses)
	assert.Equal(t, 1, snap.CorrectResponses)
	assert.True(t, snap.ShowFeedback)

	// A second response to the same item is ignored.
	run.SubmitResponse(domain.Swipe)
	assert.Equal(t, 1, run.Snapshot().TotalResponses)

	run.AcknowledgeFeedback()
	assert.False(t, run.Snapshot().ShowFeedback)
	assert.Equal(t, "A", run.Snapshot().Current.Location, "advance is deferred")
	h.sched.Flush()
	snap = run.Snapshot()
	require.Equal(t, "B", snap.Current.Location)
	assert.False(t, snap.HasResponded)
	assert.Nil(t, snap.LastResult)

	// Swipe on the non-threat photo is correct and timed; then a wrong tap.
	h.clock.Advance(300 * time.Millisecond)
	run.SubmitResponse(domain.Swipe)
	run.AcknowledgeFeedback()
	h.sched.Flush()
	require.Equal(t, "A", run.Snapshot().Current.Location, "new cycle after the pool is exhausted")
	h.clock.Advance(time.Second)
	run.SubmitResponse(domain.Swipe)
	snap = run.Snapshot()
	assert.False(t, snap.LastResult.IsCorrect)
	assert.Nil(t, snap.LastResult.ReactionTimeMs)
	assert.Equal(t, 3, snap.TotalResponses)
	assert.Equal(t, 2, snap.CorrectResponses)

	h.tick(59)
	assert.False(t, run.Snapshot().IsSessionComplete)
	assert.Empty(t, h.sink.calls())
	h.tick(1)

	snap = run.Snapshot()
	assert.True(t, snap.IsSessionComplete)
	assert.False(t, snap.IsPlaying)
	assert.Zero(t, snap.TimeRemainingSeconds)
	calls := h.sink.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 3, calls[0].TotalResponses)
	assert.Equal(t, 2, calls[0].CorrectResponses)
	require.NotNil(t, calls[0].AverageReactionMs)
	assert.EqualValues(t, 360, *calls[0].AverageReactionMs)
	assert.Equal(t, h.clock.Now(), calls[0].Timestamp)

	repeating, oneShot := h.sched.Pending()
	assert.Zero(t, repeating)
	assert.Zero(t, oneShot)

	assert.Zero(t, h.done, "completion waits for acknowledgement")
	run.AcknowledgeFeedback()
	run.AcknowledgeFeedback()
	assert.Equal(t, 1, h.done)

	run.Stop(context.Background())
	assert.Len(t, h.sink.calls(), 1, "a finalized session is never emitted twice")
}

func TestVideoPlaybackEndAutoResolves(t *testing.T) {
	t.Parallel()
	threatVideo := domain.MediaItem{Location: "T", Kind: domain.KindVideo, Class: domain.Threat}
	h := newHarness([]domain.MediaItem{videoSafe, threatVideo})
	run := h.start(t, domain.Config{IncludeVideos: true, DurationMinutes: 1})
	require.Equal(t, "V", run.Snapshot().Current.Location)

	h.clock.Advance(2 * time.Second)
	run.NotifyMediaPlaybackEnded()
	snap := run.Snapshot()
	require.NotNil(t, snap.LastResult)
	assert.Equal(t, domain.Swipe, snap.LastResult.Response)
	assert.True(t, snap.LastResult.IsCorrect)
	assert.Nil(t, snap.LastResult.ReactionTimeMs)
	assert.Equal(t, 1, snap.TotalResponses)

	run.NotifyMediaPlaybackEnded()
	assert.Equal(t, 1, run.Snapshot().TotalResponses)

	run.AcknowledgeFeedback()
	h.sched.Flush()
	require.Equal(t, "T", run.Snapshot().Current.Location)
	run.NotifyMediaPlaybackEnded()
	assert.False(t, run.Snapshot().HasResponded, "threat video keeps waiting")

	run.SubmitResponse(domain.Tap)
	snap = run.Snapshot()
	assert.True(t, snap.LastResult.IsCorrect)
	require.NotNil(t, snap.LastResult.ReactionTimeMs)
}

func TestCorrectSwipeOnVideoIsNotTimed(t *testing.T) {
	t.Parallel()
	h := newHarness([]domain.MediaItem{videoSafe})
	run := h.start(t, domain.Config{IncludeVideos: true, DurationMinutes: 1})

	h.clock.Advance(time.Second)
	run.SubmitResponse(domain.Swipe)
	snap := run.Snapshot()
	assert.True(t, snap.LastResult.IsCorrect)
	assert.Nil(t, snap.LastResult.ReactionTimeMs)
}

func TestZeroElapsedReactionIsNull(t *testing.T) {
	t.Parallel()
	h := newHarness([]domain.MediaItem{photoThreat})
	run := h.start(t, photosOnly(1))

	run.SubmitResponse(domain.Tap)
	snap := run.Snapshot()
	assert.True(t, snap.LastResult.IsCorrect)
	assert.Nil(t, snap.LastResult.ReactionTimeMs)
	assert.Empty(t, snap.ReactionTimesMs)
}

func TestStopWithoutResponsesEmitsNothing(t *testing.T) {
	t.Parallel()
	h := newHarness([]domain.MediaItem{photoThreat})
	run := h.start(t, photosOnly(1))

	run.Stop(context.Background())
	assert.Empty(t, h.sink.calls())
	assert.False(t, run.Snapshot().IsPlaying)
	repeating, oneShot := h.sched.Pending()
	assert.Zero(t, repeating)
	assert.Zero(t, oneShot)
	assert.Zero(t, h.done)
}

func TestStopCancelsTimersAndEmitsOnce(t *testing.T) {
	t.Parallel()
	h := newHarness([]domain.MediaItem{photoThreat, photoSafe})
	run := h.start(t, photosOnly(1))

	h.clock.Advance(250 * time.Millisecond)
	run.SubmitResponse(domain.Tap)
	run.AcknowledgeFeedback()
	_, oneShot := h.sched.Pending()
	require.Equal(t, 1, oneShot)

	run.Stop(context.Background())
	run.Stop(context.Background())
	repeating, oneShot := h.sched.Pending()
	assert.Zero(t, repeating)
	assert.Zero(t, oneShot)

	calls := h.sink.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 1, calls[0].TotalResponses)

	// Nothing mutates a stopped session.
	before := run.Snapshot()
	h.sched.Flush()
	h.tick(5)
	run.SubmitResponse(domain.Swipe)
	run.NotifyMediaPlaybackEnded()
	assert.Equal(t, before, run.Snapshot())
}

func TestResponsesAfterCompletionAreIgnored(t *testing.T) {
	t.Parallel()
	h := newHarness([]domain.MediaItem{photoThreat})
	run := h.start(t, photosOnly(1))
	h.tick(60)
	require.True(t, run.Snapshot().IsSessionComplete)

	run.SubmitResponse(domain.Tap)
	assert.Zero(t, run.Snapshot().TotalResponses)
	calls := h.sink.calls()
	require.Len(t, calls, 1)
	assert.Zero(t, calls[0].TotalResponses)
	assert.Nil(t, calls[0].AverageReactionMs)
}

func TestSinkFailureDoesNotReopenSession(t *testing.T) {
	t.Parallel()
	h := newHarness([]domain.MediaItem{photoThreat})
	h.sink.err = errors.New("disk full")
	run := h.start(t, photosOnly(1))

	h.tick(60)
	assert.True(t, run.Snapshot().IsSessionComplete)
	assert.Len(t, h.sink.calls(), 1)
	run.AcknowledgeFeedback()
	assert.Equal(t, 1, h.done)
}

func TestAcknowledgeWithoutFeedbackIsNoop(t *testing.T) {
	t.Parallel()
	h := newHarness([]domain.MediaItem{photoThreat, photoSafe})
	run := h.start(t, photosOnly(1))

	run.AcknowledgeFeedback()
	_, oneShot := h.sched.Pending()
	assert.Zero(t, oneShot)
	assert.Equal(t, "A", run.Snapshot().Current.Location)
}

func TestAdvanceSkippedWhenCompletedMeanwhile(t *testing.T) {
	t.Parallel()
	h := newHarness([]domain.MediaItem{photoThreat, photoSafe})
	run := h.start(t, photosOnly(1))

	run.SubmitResponse(domain.Tap)
	run.AcknowledgeFeedback()
	h.tick(60)
	h.sched.Flush()
	assert.Equal(t, "A", run.Snapshot().Current.Location)
}

func TestPeekDoesNotMutate(t *testing.T) {
	t.Parallel()
	h := newHarness([]domain.MediaItem{photoThreat, photoSafe})
	run := h.start(t, photosOnly(1))

	before := run.Snapshot()
	peeked, ok := run.PeekNextItem()
	require.True(t, ok)
	assert.Equal(t, "B", peeked.Location)
	again, _ := run.PeekNextItem()
	assert.Equal(t, peeked, again)
	assert.Equal(t, before, run.Snapshot())

	run.SubmitResponse(domain.Tap)
	run.AcknowledgeFeedback()
	h.sched.Flush()
	assert.Equal(t, peeked, *run.Snapshot().Current)
}

func TestResolveURLDelegatesToCatalog(t *testing.T) {
	t.Parallel()
	h := newHarness([]domain.MediaItem{photoThreat})
	run := h.start(t, photosOnly(1))
	url, err := run.ResolveURL(context.Background(), photoThreat)
	require.NoError(t, err)
	assert.Equal(t, "file:///media/A", url)
}

func TestSelectionNeverRepeatsWithinCycle(t *testing.T) {
	t.Parallel()
	items := []domain.MediaItem{
		{Location: "1", Kind: domain.KindPhoto, Class: domain.Threat},
		{Location: "2", Kind: domain.KindPhoto, Class: domain.NonThreat},
		{Location: "3", Kind: domain.KindPhoto, Class: domain.Threat},
		{Location: "4", Kind: domain.KindPhoto, Class: domain.NonThreat},
	}
	rng := rand.New(rand.NewPCG(7, 11))
	h := newHarness(items, service.WithRandom(rng.IntN))
	run := h.start(t, domain.Config{IncludePhotos: true, DurationMinutes: 30})

	var order []string
	for range 4 * 25 {
		order = append(order, run.Snapshot().Current.Location)
		run.SubmitResponse(domain.Tap)
		run.AcknowledgeFeedback()
		h.sched.Flush()
	}
	for cycle := 0; cycle < len(order); cycle += len(items) {
		seen := map[string]bool{}
		for _, loc := range order[cycle : cycle+len(items)] {
			assert.False(t, seen[loc], "cycle starting at %d repeats %s", cycle, loc)
			seen[loc] = true
		}
	}

	snap := run.Snapshot()
	assert.Equal(t, len(order), snap.TotalResponses)
	assert.LessOrEqual(t, snap.CorrectResponses, snap.TotalResponses)
}
