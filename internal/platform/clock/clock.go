package clock

import "time"

// Clock abstracts time to keep the session engine deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock stamps records in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// MonotonicClock keeps the monotonic reading so elapsed times survive wall
// clock steps. Convert with UTC before persisting.
type MonotonicClock struct{}

func (MonotonicClock) Now() time.Time {
	return time.Now()
}

// Func adapts a plain function to Clock.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }
