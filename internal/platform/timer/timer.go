// Package timer provides cancellable scheduled callbacks.
package timer

import (
	"sync"
	"time"
)

// Cancel stops a scheduled callback. It is safe to call more than once.
type Cancel func()

// Scheduler runs callbacks after a delay or on a fixed interval. Callbacks
// run on a goroutine owned by the scheduler.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Cancel
	After(delay time.Duration, fn func()) Cancel
}

type SystemScheduler struct{}

func (SystemScheduler) Every(interval time.Duration, fn func()) Cancel {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

func (SystemScheduler) After(delay time.Duration, fn func()) Cancel {
	t := time.AfterFunc(delay, fn)
	return func() { t.Stop() }
}

// Manual is a Scheduler driven explicitly by the caller. Nothing fires until
// Tick or Flush is called.
type Manual struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	delay     time.Duration
	repeat    bool
	fn        func()
	cancelled bool
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Every(interval time.Duration, fn func()) Cancel {
	return m.add(&manualTask{delay: interval, repeat: true, fn: fn})
}

func (m *Manual) After(delay time.Duration, fn func()) Cancel {
	return m.add(&manualTask{delay: delay, fn: fn})
}

func (m *Manual) add(task *manualTask) Cancel {
	m.mu.Lock()
	m.tasks = append(m.tasks, task)
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		task.cancelled = true
		m.mu.Unlock()
	}
}

// Tick fires every live repeating callback once.
func (m *Manual) Tick() {
	for _, fn := range m.take(true) {
		fn()
	}
}

// Flush fires and drops every live one-shot callback.
func (m *Manual) Flush() {
	for _, fn := range m.take(false) {
		fn()
	}
}

// Pending reports the number of live callbacks of each kind.
func (m *Manual) Pending() (repeating, oneShot int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, task := range m.tasks {
		if task.cancelled {
			continue
		}
		if task.repeat {
			repeating++
		} else {
			oneShot++
		}
	}
	return repeating, oneShot
}

func (m *Manual) take(repeat bool) []func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	var fns []func()
	kept := m.tasks[:0]
	for _, task := range m.tasks {
		if task.cancelled {
			continue
		}
		if task.repeat == repeat {
			fns = append(fns, task.fn)
			if !repeat {
				continue
			}
		}
		kept = append(kept, task)
	}
	m.tasks = kept
	return fns
}
