package progress

import (
	"sync"

	"englishexplorer/internal/logger"
	"englishexplorer/internal/models"

	"go.uber.org/zap"
)

// LevelUp is emitted when an XP award moves the player to a higher level
type LevelUp struct {
	Level int `json:"level"`
	XP    int `json:"xp"`
}

// Tracker owns the player's XP. Games report awards through AddXP and never
// touch the state directly.
type Tracker struct {
	mu        sync.Mutex
	state     models.ProgressState
	listeners []func(LevelUp)
	awards    []func(source string, amount int)
}

// NewTracker starts a tracker at 0 XP, level 1
func NewTracker() *Tracker {
	return &Tracker{state: models.NewProgressState(0)}
}

// Subscribe registers a level-up listener
func (t *Tracker) Subscribe(fn func(LevelUp)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// OnAward registers a callback for every accepted award
func (t *Tracker) OnAward(fn func(source string, amount int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.awards = append(t.awards, fn)
}

// AddXP applies an award and returns the new state. Negative amounts are
// ignored. A level-up fires once when the new level exceeds the old one.
func (t *Tracker) AddXP(source string, amount int) models.ProgressState {
	if amount < 0 {
		logger.Warn("ignoring negative xp award",
			zap.String("source", source), zap.Int("amount", amount))
		return t.State()
	}

	t.mu.Lock()
	prev := t.state.Level
	t.state = models.NewProgressState(t.state.XP + amount)
	state := t.state
	listeners := append([]func(LevelUp){}, t.listeners...)
	awards := append([]func(string, int){}, t.awards...)
	t.mu.Unlock()

	for _, fn := range awards {
		fn(source, amount)
	}

	if state.Level > prev {
		logger.Info("level up", zap.Int("level", state.Level), zap.Int("xp", state.XP))
		event := LevelUp{Level: state.Level, XP: state.XP}
		for _, fn := range listeners {
			fn(event)
		}
	}
	return state
}

// State returns a snapshot of the current progress
func (t *Tracker) State() models.ProgressState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
