package domain

// Selector draws items at random without repeating any item until every
// item of the pool has been shown once in the current cycle.
type Selector struct {
	pool  []MediaItem
	shown map[string]struct{}
	intn  func(n int) int
}

// NewSelector copies pool. intn must return a uniform value in [0, n).
func NewSelector(pool []MediaItem, intn func(n int) int) *Selector {
	return &Selector{
		pool:  append([]MediaItem(nil), pool...),
		shown: make(map[string]struct{}, len(pool)),
		intn:  intn,
	}
}

func (s *Selector) Len() int { return len(s.pool) }

// candidates returns the unshown items, or the whole pool with reset=true
// once the cycle is exhausted.
func (s *Selector) candidates() (items []MediaItem, reset bool) {
	unshown := make([]MediaItem, 0, len(s.pool))
	for _, item := range s.pool {
		if _, ok := s.shown[item.Location]; !ok {
			unshown = append(unshown, item)
		}
	}
	if len(unshown) == 0 {
		return s.pool, true
	}
	return unshown, false
}

// Peek computes the next item with the same distribution as Draw without
// touching the shown set.
func (s *Selector) Peek() (MediaItem, bool) {
	if len(s.pool) == 0 {
		return MediaItem{}, false
	}
	items, _ := s.candidates()
	return items[s.intn(len(items))], true
}

func (s *Selector) Draw() (MediaItem, bool) {
	if len(s.pool) == 0 {
		return MediaItem{}, false
	}
	items, reset := s.candidates()
	if reset {
		clear(s.shown)
	}
	item := items[s.intn(len(items))]
	s.shown[item.Location] = struct{}{}
	return item, true
}

// Shown reports how many items have been drawn in the current cycle.
func (s *Selector) Shown() int { return len(s.shown) }
