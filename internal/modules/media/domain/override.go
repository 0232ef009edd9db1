package domain

import "time"

// Override is a per-item user adjustment to the catalog.
type Override struct {
	Location  string          `json:"location"`
	Excluded  bool            `json:"excluded"`
	Class     *Classification `json:"class,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func NewOverride(location string, now time.Time) Override {
	return Override{Location: location, CreatedAt: now, UpdatedAt: now}
}

// Empty reports whether the override changes nothing. Empty overrides are
// deleted instead of stored.
func (o Override) Empty() bool {
	return !o.Excluded && o.Class == nil
}

func (o Override) WithExcluded(excluded bool, now time.Time) Override {
	o.Excluded = excluded
	o.UpdatedAt = now
	return o
}

// WithClass sets the classification override; nil clears it.
func (o Override) WithClass(class *Classification, now time.Time) Override {
	if class != nil {
		c := *class
		o.Class = &c
	} else {
		o.Class = nil
	}
	o.UpdatedAt = now
	return o
}
