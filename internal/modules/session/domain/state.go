package domain

import "time"

// State is the mutable run state of one session. It is not safe for
// concurrent use; the engine serializes every mutation.
type State struct {
	IsPlaying            bool
	Current              *MediaItem
	TimeRemainingSeconds int
	TotalResponses       int
	CorrectResponses     int
	ReactionTimesMs      []int64
	ShowFeedback         bool
	LastResult           *ResponseResult
	HasResponded         bool
	IsSessionComplete    bool
	// Draw counts presentations. It changes on every draw, including a
	// repeat of the previous item.
	Draw int

	drawnAt time.Time
	timing  bool
}

func NewState(durationSeconds int) State {
	return State{IsPlaying: true, TimeRemainingSeconds: durationSeconds}
}

// Present publishes item as current and starts its reaction clock.
func (s *State) Present(item MediaItem, at time.Time) {
	s.Current = &item
	s.Draw++
	s.HasResponded = false
	s.LastResult = nil
	s.drawnAt = at
	s.timing = true
}

// Respond scores a user response against the current item. It returns false
// when there is no current item or it already has a result.
func (s *State) Respond(response UserResponse, now time.Time) (ResponseResult, bool) {
	if s.Current == nil || s.HasResponded {
		return ResponseResult{}, false
	}
	item := *s.Current
	correct := IsCorrect(item, response)
	result := ResponseResult{IsCorrect: correct, Response: response, Actual: item.Class}
	if s.timing && TimesReaction(item, response, correct) {
		result.ReactionTimeMs = ReactionTime(s.drawnAt, now)
	}
	s.record(result)
	return result, true
}

// PlaybackEnded auto-resolves an unanswered non-threat video as a correct
// swipe. Any other item is left waiting for an explicit response.
func (s *State) PlaybackEnded() (ResponseResult, bool) {
	if s.Current == nil || s.HasResponded {
		return ResponseResult{}, false
	}
	if s.Current.Kind != KindVideo || s.Current.Class != NonThreat {
		return ResponseResult{}, false
	}
	result := ResponseResult{IsCorrect: true, Response: Swipe, Actual: NonThreat}
	s.record(result)
	return result, true
}

func (s *State) record(result ResponseResult) {
	s.TotalResponses++
	if result.IsCorrect {
		s.CorrectResponses++
	}
	if result.ReactionTimeMs != nil {
		s.ReactionTimesMs = append(s.ReactionTimesMs, *result.ReactionTimeMs)
	}
	r := result
	s.LastResult = &r
	s.ShowFeedback = true
	s.HasResponded = true
	s.timing = false
}

// Tick decrements the countdown and reports whether it just reached zero.
func (s *State) Tick() bool {
	if s.IsSessionComplete {
		return false
	}
	s.TimeRemainingSeconds--
	if s.TimeRemainingSeconds > 0 {
		return false
	}
	s.TimeRemainingSeconds = 0
	s.IsPlaying = false
	s.IsSessionComplete = true
	return true
}

// Stats aggregates the state into the record emitted at finalization.
func (s *State) Stats(at time.Time) Stats {
	return Stats{
		Timestamp:         at,
		TotalResponses:    s.TotalResponses,
		CorrectResponses:  s.CorrectResponses,
		AverageReactionMs: AverageReactionTime(s.ReactionTimesMs),
	}
}

// Clone returns a deep copy safe to hand to readers.
func (s *State) Clone() State {
	out := *s
	if s.Current != nil {
		item := *s.Current
		out.Current = &item
	}
	if s.LastResult != nil {
		r := *s.LastResult
		if r.ReactionTimeMs != nil {
			ms := *r.ReactionTimeMs
			r.ReactionTimeMs = &ms
		}
		out.LastResult = &r
	}
	out.ReactionTimesMs = append([]int64(nil), s.ReactionTimesMs...)
	return out
}
