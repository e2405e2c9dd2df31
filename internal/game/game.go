// Package game holds what the mini-game engines share: round bookkeeping,
// completion reporting and generation-guarded timers.
package game

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"englishexplorer/internal/models"
	"englishexplorer/internal/schedule"
)

// Timing of the automatic transitions
const (
	MatchDelay        = 500 * time.Millisecond
	MismatchDelay     = 1000 * time.Millisecond
	CompletionDelay   = 1000 * time.Millisecond
	AdvanceDelay      = 1500 * time.Millisecond
	FeedbackClear     = 1000 * time.Millisecond
	CountdownTick     = time.Second
	CountdownSeconds  = 20
	MaxOrderingTries  = 3
	MatchingPairs     = 8
	MatchingReward    = 100
	OrderingReward    = 150
	PointsPerQuestion = 20
)

var (
	ErrNoContent = errors.New("no rounds available")
	ErrCompleted = errors.New("game already completed")
	ErrLoading   = errors.New("content is still loading")
)

// Status is the state of the current round
type Status string

const (
	StatusLoading   Status = "loading"
	StatusPlaying   Status = "playing"
	StatusCorrect   Status = "correct"
	StatusWrong     Status = "wrong"
	StatusFailed    Status = "failed"
	StatusCompleted Status = "completed"
)

// Reporter receives the XP award when a play-through finishes
type Reporter interface {
	GameCompleted(kind models.GameKind, xp int)
}

// ReporterFunc adapts a function to Reporter
type ReporterFunc func(kind models.GameKind, xp int)

func (f ReporterFunc) GameCompleted(kind models.GameKind, xp int) { f(kind, xp) }

// Engine is what the shell needs from any mini-game
type Engine interface {
	ID() string
	Kind() models.GameKind
	Snapshot() any
	Stop()
}

// Options are the collaborators every engine takes
type Options struct {
	Scheduler schedule.Scheduler
	Rand      *rand.Rand
	Reporter  Reporter
	// OnUpdate runs after every timer-driven transition, outside the
	// engine lock.
	OnUpdate func()
}

func (o Options) Report(kind models.GameKind, xp int) {
	if o.Reporter != nil {
		o.Reporter.GameCompleted(kind, xp)
	}
}

func (o Options) Notify() {
	if o.OnUpdate != nil {
		o.OnUpdate()
	}
}

// RoundProgress tracks position within a play-through. CurrentIndex only
// moves forward and AttemptsOnCurrent resets on every advance.
type RoundProgress struct {
	CurrentIndex      int  `json:"current_index"`
	TotalRounds       int  `json:"total_rounds"`
	AttemptsOnCurrent int  `json:"attempts"`
	Failed            bool `json:"failed"`
	Score             int  `json:"score"`
}

// Advance moves to the next round and reports whether rounds remain
func (p *RoundProgress) Advance() bool {
	p.CurrentIndex++
	p.AttemptsOnCurrent = 0
	p.Failed = false
	return p.CurrentIndex < p.TotalRounds
}

// Timers schedules callbacks that run under the owning engine's lock and
// are discarded when the engine's generation moves on. Every method must be
// called with that lock held.
type Timers struct {
	mu      *sync.Mutex
	sched   schedule.Scheduler
	gen     uint64
	pending []schedule.Task
}

// NewTimers binds timers to the engine lock mu
func NewTimers(mu *sync.Mutex, sched schedule.Scheduler) *Timers {
	if sched == nil {
		sched = schedule.NewReal()
	}
	return &Timers{mu: mu, sched: sched}
}

// Reset bumps the generation and stops everything pending
func (t *Timers) Reset() {
	t.gen++
	for _, task := range t.pending {
		task.Stop()
	}
	t.pending = nil
}

// Generation is the current round generation
func (t *Timers) Generation() uint64 {
	return t.gen
}

// After runs fn after d unless Reset is called first. fn runs under the
// lock; the func it returns, if any, runs after the lock is released.
func (t *Timers) After(d time.Duration, fn func() func()) {
	gen := t.gen
	var task schedule.Task
	task = t.sched.AfterFunc(d, func() {
		t.mu.Lock()
		if gen != t.gen {
			t.mu.Unlock()
			return
		}
		t.forget(task)
		effect := fn()
		t.mu.Unlock()

		if effect != nil {
			effect()
		}
	})
	t.pending = append(t.pending, task)
}

func (t *Timers) forget(task schedule.Task) {
	for i, p := range t.pending {
		if p == task {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			return
		}
	}
}

// Pending is the number of live timers
func (t *Timers) Pending() int {
	return len(t.pending)
}
