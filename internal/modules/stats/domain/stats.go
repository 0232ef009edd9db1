package domain

import (
	"fmt"
	"math"
	"time"
)

const DefaultRecentLimit = 10

// SessionStats is the durable summary of one finished training session.
// ID is assigned by the store.
type SessionStats struct {
	ID                int64
	Timestamp         time.Time
	TotalResponses    int
	CorrectResponses  int
	AverageReactionMs *int64
}

// Score is the fraction of correct responses, 0 for an empty session.
func (s SessionStats) Score() float64 {
	if s.TotalResponses == 0 {
		return 0
	}
	return float64(s.CorrectResponses) / float64(s.TotalResponses)
}

func (s SessionStats) Validate() error {
	if s.TotalResponses < 0 || s.CorrectResponses < 0 {
		return fmt.Errorf("response counters must not be negative")
	}
	if s.CorrectResponses > s.TotalResponses {
		return fmt.Errorf("correct responses %d exceed total %d", s.CorrectResponses, s.TotalResponses)
	}
	if s.AverageReactionMs != nil && *s.AverageReactionMs < 0 {
		return fmt.Errorf("average reaction time must not be negative")
	}
	if s.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	return nil
}

type Summary struct {
	Sessions          int
	TotalResponses    int
	CorrectResponses  int
	Score             float64
	AverageReactionMs *int64
	BestScore         float64
	LastPlayed        time.Time
}

// Summarize aggregates history. The reaction average is the rounded mean of
// the per-session averages that exist.
func Summarize(history []SessionStats) Summary {
	var out Summary
	var sum int64
	var timed int
	for _, s := range history {
		out.Sessions++
		out.TotalResponses += s.TotalResponses
		out.CorrectResponses += s.CorrectResponses
		if score := s.Score(); score > out.BestScore {
			out.BestScore = score
		}
		if s.AverageReactionMs != nil {
			sum += *s.AverageReactionMs
			timed++
		}
		if s.Timestamp.After(out.LastPlayed) {
			out.LastPlayed = s.Timestamp
		}
	}
	if out.TotalResponses > 0 {
		out.Score = float64(out.CorrectResponses) / float64(out.TotalResponses)
	}
	if timed > 0 {
		avg := int64(math.Round(float64(sum) / float64(timed)))
		out.AverageReactionMs = &avg
	}
	return out
}
