package domain

import (
	"slices"
	"strings"
)

// Entry is an item as seen through its override.
type Entry struct {
	Item
	Source        Source
	OriginalClass Classification
	Excluded      bool
	Overridden    bool
}

// rank orders items videos-threat, videos-non-threat, photos-threat,
// photos-non-threat.
func rank(item Item) int {
	r := 0
	if item.Kind == KindPhoto {
		r += 2
	}
	if item.Class == NonThreat {
		r++
	}
	return r
}

// Assemble merges built-in and user items with their overrides. Built-in
// items come first, each source grouped by kind and original classification.
func Assemble(builtIn, user []Item, overrides map[string]Override) []Entry {
	out := make([]Entry, 0, len(builtIn)+len(user))
	for _, group := range [][]Item{builtIn, user} {
		sorted := slices.Clone(group)
		slices.SortStableFunc(sorted, func(a, b Item) int { return rank(a) - rank(b) })
		for _, item := range sorted {
			out = append(out, applyOverride(item, overrides))
		}
	}
	return out
}

func applyOverride(item Item, overrides map[string]Override) Entry {
	entry := Entry{Item: item, Source: SourceOf(item.Location), OriginalClass: item.Class}
	o, ok := overrides[item.Location]
	if !ok || o.Empty() {
		return entry
	}
	entry.Overridden = true
	entry.Excluded = o.Excluded
	if o.Class != nil {
		entry.Class = *o.Class
	}
	return entry
}

// Eligible keeps the non-excluded entries of the requested kinds.
func Eligible(entries []Entry, includeVideos, includePhotos bool) []Item {
	out := make([]Item, 0, len(entries))
	for _, e := range entries {
		if e.Excluded {
			continue
		}
		if (e.Kind == KindVideo && !includeVideos) || (e.Kind == KindPhoto && !includePhotos) {
			continue
		}
		out = append(out, e.Item)
	}
	return out
}

// Filter narrows a gallery listing. Zero values match everything.
type Filter struct {
	Kind     Kind
	Class    Classification
	Source   Source
	Excluded *bool
	Query    string
}

func (f Filter) Match(e Entry) bool {
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if f.Class != "" && e.Class != f.Class {
		return false
	}
	if f.Source != "" && e.Source != f.Source {
		return false
	}
	if f.Excluded != nil && e.Excluded != *f.Excluded {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(e.Name), q) && !strings.Contains(strings.ToLower(e.Location), q) {
			return false
		}
	}
	return true
}

func Select(entries []Entry, f Filter) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Counts tallies entries for the gallery header.
type Counts struct {
	Total    int
	Videos   int
	Photos   int
	Threat   int
	Excluded int
	User     int
}

func Count(entries []Entry) Counts {
	var c Counts
	for _, e := range entries {
		c.Total++
		if e.Kind == KindVideo {
			c.Videos++
		} else {
			c.Photos++
		}
		if e.Class == Threat {
			c.Threat++
		}
		if e.Excluded {
			c.Excluded++
		}
		if e.Source == SourceUser {
			c.User++
		}
	}
	return c
}
