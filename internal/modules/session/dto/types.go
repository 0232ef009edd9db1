package dto

const (
	ResponseTap   = "TAP"
	ResponseSwipe = "SWIPE"
)

type StartInput struct {
	IncludeVideos   bool
	IncludePhotos   bool
	DurationMinutes int
}

type MediaItemOutput struct {
	Location string
	Kind     string
	Class    string
}

type ResultOutput struct {
	IsCorrect      bool
	Response       string
	Actual         string
	ReactionTimeMs *int64
}

type Snapshot struct {
	IsPlaying            bool
	Current              *MediaItemOutput
	TimeRemainingSeconds int
	TotalResponses       int
	CorrectResponses     int
	ShowFeedback         bool
	LastResult           *ResultOutput
	HasResponded         bool
	IsSessionComplete    bool
	Draw                 int
}
