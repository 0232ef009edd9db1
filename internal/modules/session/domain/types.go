package domain

import (
	"fmt"
	"strings"
	"time"
)

type MediaKind string

const (
	KindVideo MediaKind = "VIDEO"
	KindPhoto MediaKind = "PHOTO"
)

type Classification string

const (
	Threat    Classification = "THREAT"
	NonThreat Classification = "NON_THREAT"
)

type UserResponse string

const (
	// Tap asserts that the current item is a threat.
	Tap UserResponse = "TAP"
	// Swipe asserts that the current item is not a threat.
	Swipe UserResponse = "SWIPE"
)

func ParseUserResponse(raw string) (UserResponse, error) {
	switch r := UserResponse(strings.ToUpper(strings.TrimSpace(raw))); r {
	case Tap, Swipe:
		return r, nil
	default:
		return "", fmt.Errorf("unsupported response %q", raw)
	}
}

// Asserts returns the classification the response claims.
func (r UserResponse) Asserts() Classification {
	if r == Tap {
		return Threat
	}
	return NonThreat
}

// MediaItem is read-only input supplied by the media catalog. Location is
// unique within a pool.
type MediaItem struct {
	Location string
	Kind     MediaKind
	Class    Classification
}

type ResponseResult struct {
	IsCorrect      bool
	Response       UserResponse
	Actual         Classification
	ReactionTimeMs *int64
}

// Stats is emitted once per session at finalization.
type Stats struct {
	Timestamp         time.Time
	TotalResponses    int
	CorrectResponses  int
	AverageReactionMs *int64
}

type Config struct {
	IncludeVideos   bool
	IncludePhotos   bool
	DurationMinutes int
}
