package dto

import "time"

type RecordInput struct {
	Timestamp         time.Time
	TotalResponses    int
	CorrectResponses  int
	AverageReactionMs *int64
}

type SessionOutput struct {
	ID                int64
	Timestamp         time.Time
	TotalResponses    int
	CorrectResponses  int
	AverageReactionMs *int64
	Score             float64
}

type SummaryOutput struct {
	Sessions          int
	TotalResponses    int
	CorrectResponses  int
	Score             float64
	AverageReactionMs *int64
	BestScore         float64
	LastPlayed        time.Time
}
