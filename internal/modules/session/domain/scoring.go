package domain

import (
	"math"
	"time"
)

// IsCorrect compares the response against the item's ground truth.
func IsCorrect(item MediaItem, response UserResponse) bool {
	return item.Class == response.Asserts()
}

// TimesReaction reports whether a correct response contributes a reaction
// time. Swipes against non-threat videos are excluded because those videos
// resolve on their own when playback ends.
func TimesReaction(item MediaItem, response UserResponse, correct bool) bool {
	if !correct {
		return false
	}
	threatTap := response == Tap && item.Class == Threat
	photoSwipe := response == Swipe && item.Class == NonThreat && item.Kind == KindPhoto
	return threatTap || photoSwipe
}

// ReactionTime returns the elapsed milliseconds since drawnAt, or nil when
// the elapsed time is not positive.
func ReactionTime(drawnAt, now time.Time) *int64 {
	ms := now.Sub(drawnAt).Milliseconds()
	if ms <= 0 {
		return nil
	}
	return &ms
}

// AverageReactionTime is the mean rounded to the nearest millisecond, nil
// for an empty list.
func AverageReactionTime(times []int64) *int64 {
	if len(times) == 0 {
		return nil
	}
	var sum int64
	for _, t := range times {
		sum += t
	}
	avg := int64(math.Round(float64(sum) / float64(len(times))))
	return &avg
}
