// Package shell is the top-level state of the app: which view is open,
// which mini-game is running and where earned XP goes.
package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"englishexplorer/internal/content"
	"englishexplorer/internal/game"
	"englishexplorer/internal/game/gapfill"
	"englishexplorer/internal/game/matching"
	"englishexplorer/internal/game/ordering"
	"englishexplorer/internal/logger"
	"englishexplorer/internal/metrics"
	"englishexplorer/internal/models"
	"englishexplorer/internal/progress"
	"englishexplorer/internal/random"
	"englishexplorer/internal/reading"
	"englishexplorer/internal/realtime"
	"englishexplorer/internal/schedule"

	"go.uber.org/zap"
)

// View is a top-level screen
type View string

const (
	ViewHome    View = "HOME"
	ViewReading View = "READING"
	ViewGames   View = "GAMES"
)

// ParseView accepts view names in any case
func ParseView(s string) (View, error) {
	switch v := View(strings.ToUpper(s)); v {
	case ViewHome, ViewReading, ViewGames:
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

var (
	ErrUnknownView  = errors.New("unknown view")
	ErrNoActiveGame = errors.New("no game is running")
	ErrWrongGame    = errors.New("a different game is running")
	ErrUnknownGame  = errors.New("unknown game")
)

// Notifier receives state changes the player did not ask for directly
type Notifier interface {
	Publish(ev realtime.Event)
}

// Deps are the collaborators the shell wires together
type Deps struct {
	Tracker       *progress.Tracker
	Stories       reading.StoryFetcher
	Rounds        *content.Rounds
	Pack          *content.Pack
	Scheduler     schedule.Scheduler
	Notifier      Notifier
	Seed          uint64
	ConfigMissing bool
}

// State is the shell as shown to the player
type State struct {
	View          View            `json:"view"`
	ActiveGame    models.GameKind `json:"active_game"`
	GameID        string          `json:"game_id,omitempty"`
	HUD           models.HUD      `json:"hud"`
	ConfigMissing bool            `json:"config_missing"`
}

// Shell owns the view, the reading session and at most one game
type Shell struct {
	deps    Deps
	reading *reading.Session

	mu     sync.Mutex
	view   View
	active game.Engine
	dealt  uint64
}

// New builds a shell on the home view
func New(deps Deps) *Shell {
	if deps.Tracker == nil {
		deps.Tracker = progress.NewTracker()
	}
	s := &Shell{deps: deps, view: ViewHome}
	s.reading = reading.NewSession(deps.Stories, reading.ReporterFunc(s.quizScored), s.readingUpdated)

	deps.Tracker.OnAward(func(source string, amount int) {
		metrics.XPAwarded.WithLabelValues(source).Add(float64(amount))
	})
	deps.Tracker.Subscribe(func(ev progress.LevelUp) {
		metrics.PlayerLevel.Set(float64(ev.Level))
		s.publish(realtime.Event{Type: realtime.EventLevelUp, Payload: ev})
	})
	metrics.PlayerLevel.Set(float64(deps.Tracker.State().Level))
	return s
}

// ConfigMissing reports whether the content credential was absent at startup
func (s *Shell) ConfigMissing() bool {
	return s.deps.ConfigMissing
}

// HUD is the progress summary for the header
func (s *Shell) HUD() models.HUD {
	return s.deps.Tracker.State().HUD()
}

// Progress is the raw XP state
func (s *Shell) Progress() models.ProgressState {
	return s.deps.Tracker.State()
}

// State returns the current view and active game
func (s *Shell) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Shell) stateLocked() State {
	st := State{
		View:          s.view,
		ActiveGame:    models.GameNone,
		HUD:           s.HUD(),
		ConfigMissing: s.deps.ConfigMissing,
	}
	if s.active != nil {
		st.ActiveGame = s.active.Kind()
		st.GameID = s.active.ID()
	}
	return st
}

// Navigate switches views. Leaving the reading view discards the story;
// leaving the games view stops the running game.
func (s *Shell) Navigate(view View) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navigateLocked(view)
	return s.stateLocked()
}

func (s *Shell) navigateLocked(view View) {
	if s.view == view {
		return
	}
	switch s.view {
	case ViewReading:
		s.reading.Reset()
	case ViewGames:
		s.stopActiveLocked()
	}
	logger.Debug("navigate", zap.String("from", string(s.view)), zap.String("to", string(view)))
	s.view = view
}

// Reading returns the reading session
func (s *Shell) Reading() *reading.Session {
	return s.reading
}

// RequestStory opens the reading view and fetches a new story
func (s *Shell) RequestStory(ctx context.Context) (reading.Snapshot, error) {
	s.mu.Lock()
	s.navigateLocked(ViewReading)
	s.mu.Unlock()

	return s.reading.RequestStory(ctx)
}

// StartGame replaces any running game with a new one of kind and loads its
// content. The games view is opened if needed.
func (s *Shell) StartGame(ctx context.Context, kind models.GameKind) (any, error) {
	s.mu.Lock()
	s.navigateLocked(ViewGames)
	s.stopActiveLocked()

	eng, err := s.buildLocked(kind)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.active = eng
	s.mu.Unlock()

	logger.Info("game started", zap.String("game", string(kind)), zap.String("game_id", eng.ID()))

	switch g := eng.(type) {
	case *ordering.Game:
		return g.Load(ctx)
	case *gapfill.Game:
		return g.Load(ctx)
	}
	return eng.Snapshot(), nil
}

func (s *Shell) buildLocked(kind models.GameKind) (game.Engine, error) {
	seed := s.deps.Seed
	if seed != 0 {
		seed += s.dealt
	}
	s.dealt++

	r, err := random.New(seed)
	if err != nil {
		return nil, err
	}

	var eng game.Engine
	opts := game.Options{
		Scheduler: s.deps.Scheduler,
		Rand:      r,
		OnUpdate: func() {
			s.publish(realtime.Event{Type: realtime.EventGameUpdate, GameID: eng.ID(), Payload: eng.Snapshot()})
		},
	}
	// bound to this engine so a stale report cannot end a newer game
	opts.Reporter = game.ReporterFunc(func(kind models.GameKind, xp int) {
		s.gameCompleted(eng, kind, xp)
	})

	switch kind {
	case models.GameMatching:
		eng, err = matching.New(s.deps.Pack.Vocabulary, opts)
	case models.GameOrdering:
		eng, err = ordering.New(s.deps.Rounds.Sentences, opts)
	case models.GameGapFill:
		eng = gapfill.New(s.deps.Rounds.GapFills, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, kind)
	}
	if err != nil {
		return nil, err
	}
	return eng, nil
}

// ExitGame stops the running game without awarding XP
func (s *Shell) ExitGame() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopActiveLocked()
	return s.stateLocked()
}

func (s *Shell) stopActiveLocked() {
	if s.active == nil {
		return
	}
	s.active.Stop()
	logger.Debug("game stopped", zap.String("game_id", s.active.ID()))
	s.active = nil
}

// ActiveGame returns the running game, if any
func (s *Shell) ActiveGame() (game.Engine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.active != nil
}

// Matching returns the running matching game
func (s *Shell) Matching() (*matching.Game, error) {
	return activeAs[*matching.Game](s)
}

// Ordering returns the running ordering game
func (s *Shell) Ordering() (*ordering.Game, error) {
	return activeAs[*ordering.Game](s)
}

// GapFill returns the running gap-fill game
func (s *Shell) GapFill() (*gapfill.Game, error) {
	return activeAs[*gapfill.Game](s)
}

func activeAs[T game.Engine](s *Shell) (T, error) {
	var zero T
	eng, ok := s.ActiveGame()
	if !ok {
		return zero, ErrNoActiveGame
	}
	g, ok := eng.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrWrongGame, eng.Kind())
	}
	return g, nil
}

// Close stops the running game and any story request
func (s *Shell) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopActiveLocked()
	s.reading.Reset()
}

func (s *Shell) gameCompleted(eng game.Engine, kind models.GameKind, xp int) {
	s.mu.Lock()
	if s.active != eng {
		s.mu.Unlock()
		logger.Debug("ignoring completion of inactive game", zap.String("game_id", eng.ID()))
		return
	}
	s.active = nil
	s.mu.Unlock()

	metrics.GamesCompleted.WithLabelValues(string(kind)).Inc()
	logger.Info("game completed", zap.String("game", string(kind)), zap.Int("xp", xp))
	s.deps.Tracker.AddXP(strings.ToLower(string(kind)), xp)
	s.publish(realtime.Event{
		Type:    realtime.EventGameCompleted,
		GameID:  eng.ID(),
		Payload: map[string]any{"game": kind, "xp": xp},
	})
}

func (s *Shell) quizScored(score, xp int) {
	logger.Info("quiz scored", zap.Int("score", score), zap.Int("xp", xp))
	s.deps.Tracker.AddXP("reading", xp)
}

func (s *Shell) readingUpdated() {
	s.publish(realtime.Event{Type: realtime.EventReadingUpdate, Payload: s.reading.State()})
}

func (s *Shell) publish(ev realtime.Event) {
	if s.deps.Notifier != nil {
		s.deps.Notifier.Publish(ev)
	}
}
