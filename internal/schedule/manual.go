package schedule

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Scheduler driven by Advance. Callbacks run synchronously on
// the goroutine calling Advance, in due-time order, so tests can step
// through timed game transitions deterministically.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	m       *Manual
	due     time.Duration
	seq     int
	f       func()
	stopped bool
}

// NewManual returns a scheduler at time zero
func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{m: m, due: m.now + d, seq: m.seq, f: f}
	m.tasks = append(m.tasks, t)
	return t
}

func (t *manualTask) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	for i, p := range t.m.tasks {
		if p == t {
			t.m.tasks = append(t.m.tasks[:i], t.m.tasks[i+1:]...)
			return true
		}
	}
	return false
}

// Advance moves the clock forward by d, firing every task that falls due.
// Tasks scheduled by a firing callback run too if they fall within d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.due
		next.stopped = true
		m.mu.Unlock()

		next.f()
	}
}

// nextDue removes and returns the earliest task due at or before target
func (m *Manual) nextDue(target time.Duration) *manualTask {
	if len(m.tasks) == 0 {
		return nil
	}
	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].due != m.tasks[j].due {
			return m.tasks[i].due < m.tasks[j].due
		}
		return m.tasks[i].seq < m.tasks[j].seq
	})
	if m.tasks[0].due > target {
		return nil
	}
	t := m.tasks[0]
	m.tasks = m.tasks[1:]
	return t
}

// Pending is the number of tasks that have not fired or been stopped
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// Now is the elapsed manual time
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}
