package indexer

import (
	"sync"
	"time"
)

// rootState is the per-root position in the Idle -> Pending -> Indexing cycle.
type rootState int

const (
	stateIdle rootState = iota
	statePending
	stateIndexing
)

// Scheduler coalesces change notifications per workspace root and serializes
// re-index passes: at most one pass runs at a time across all roots. Events
// during a pending window re-arm the debounce timer; events during a running
// pass schedule exactly one follow-up pass, regardless of how many arrive.
type Scheduler struct {
	mu       sync.Mutex
	debounce time.Duration
	run      func(root string) // executes one full pass, blocking

	states  map[string]rootState
	timers  map[string]*time.Timer
	rearmed map[string]bool // roots dirtied while their own pass was running
	queue   []string        // roots whose timer fired while another pass ran
	queued  map[string]bool
	busy    bool // a pass is in flight somewhere
	closed  bool
}

// NewScheduler creates a scheduler that invokes run for each due pass.
func NewScheduler(debounce time.Duration, run func(root string)) *Scheduler {
	return &Scheduler{
		debounce: debounce,
		run:      run,
		states:   make(map[string]rootState),
		timers:   make(map[string]*time.Timer),
		rearmed:  make(map[string]bool),
		queued:   make(map[string]bool),
	}
}

// MarkDirty records a change event for root and (re)arms its debounce timer.
func (s *Scheduler) MarkDirty(root string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	switch s.states[root] {
	case stateIndexing:
		s.rearmed[root] = true
	case statePending:
		// Repeated events reset the timer; one pass per quiet period.
		if timer := s.timers[root]; timer != nil {
			timer.Reset(s.debounce)
		}
	default:
		s.states[root] = statePending
		s.timers[root] = time.AfterFunc(s.debounce, func() { s.expire(root) })
	}
}

// Trigger schedules a pass for root immediately, bypassing the debounce
// delay. Used by explicit refresh requests and initial indexing. Returns once
// the pass is queued or started, not once it completes.
func (s *Scheduler) Trigger(root string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	if s.states[root] == stateIndexing {
		s.rearmed[root] = true
		s.mu.Unlock()
		return
	}

	if timer := s.timers[root]; timer != nil {
		timer.Stop()
		delete(s.timers, root)
	}
	s.startLocked(root)
}

// expire fires when a root's debounce timer elapses.
func (s *Scheduler) expire(root string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	delete(s.timers, root)
	s.startLocked(root)
}

// startLocked runs or queues a pass for root. Takes ownership of s.mu and
// releases it.
func (s *Scheduler) startLocked(root string) {
	if s.busy {
		// Another root is mid-pass; set membership is enough, a root needs
		// at most one queued pass.
		if !s.queued[root] {
			s.queued[root] = true
			s.queue = append(s.queue, root)
		}
		s.states[root] = statePending
		s.mu.Unlock()
		return
	}

	s.busy = true
	s.states[root] = stateIndexing
	s.mu.Unlock()
	go s.runLoop(root)
}

// runLoop executes passes back to back while queued work remains.
func (s *Scheduler) runLoop(root string) {
	for {
		s.run(root)

		s.mu.Lock()
		if s.closed {
			s.busy = false
			s.mu.Unlock()
			return
		}

		if s.rearmed[root] {
			// Edits landed mid-pass: debounce a follow-up rather than losing them.
			// The loop variable is reassigned below, so the closure must bind the
			// current value.
			delete(s.rearmed, root)
			s.states[root] = statePending
			rearmedRoot := root
			s.timers[rearmedRoot] = time.AfterFunc(s.debounce, func() { s.expire(rearmedRoot) })
		} else {
			s.states[root] = stateIdle
		}

		if len(s.queue) > 0 {
			next := s.queue[0]
			s.queue = s.queue[1:]
			delete(s.queued, next)
			s.states[next] = stateIndexing
			s.mu.Unlock()
			root = next
			continue
		}

		s.busy = false
		s.mu.Unlock()
		return
	}
}

// Close stops all pending timers and refuses further work. A pass already in
// flight runs to completion.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for root, timer := range s.timers {
		timer.Stop()
		delete(s.timers, root)
	}
	s.queue = nil
}
