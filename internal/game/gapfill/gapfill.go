// Package gapfill implements the grammar game: pick the word that fills the
// blank in a sentence.
package gapfill

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"englishexplorer/internal/fetch"
	"englishexplorer/internal/game"
	"englishexplorer/internal/models"

	"github.com/google/uuid"
)

var (
	ErrUnknownOption       = errors.New("option not offered")
	ErrNotAwaitingContinue = errors.New("nothing to continue from")
)

// Source yields the questions for a play-through
type Source func(ctx context.Context) []models.GapFillRound

// Snapshot is the question as shown to the player. The answer and
// explanation appear once an option has been chosen.
type Snapshot struct {
	ID            string             `json:"id"`
	Kind          models.GameKind    `json:"kind"`
	Status        game.Status        `json:"status"`
	Progress      game.RoundProgress `json:"progress"`
	Before        string             `json:"before"`
	After         string             `json:"after"`
	Options       []string           `json:"options"`
	Selected      string             `json:"selected,omitempty"`
	CorrectAnswer string             `json:"correct_answer,omitempty"`
	Explanation   string             `json:"explanation,omitempty"`
}

// Game is one gap-fill play-through
type Game struct {
	mu      sync.Mutex
	opts    game.Options
	timers  *game.Timers
	source  Source
	loading fetch.Latest

	id       string
	status   game.Status
	rounds   []models.GapFillRound
	progress game.RoundProgress
	selected string
}

// New returns a game waiting for Load
func New(source Source, opts game.Options) *Game {
	g := &Game{
		opts:   opts,
		source: source,
		id:     uuid.NewString(),
		status: game.StatusLoading,
	}
	g.timers = game.NewTimers(&g.mu, opts.Scheduler)
	return g
}

// Load fetches the questions and shows the first one
func (g *Game) Load(ctx context.Context) (Snapshot, error) {
	g.mu.Lock()
	g.timers.Reset()
	g.status = game.StatusLoading
	ctx, ticket := g.loading.Begin(ctx)
	g.mu.Unlock()

	rounds := g.source(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.loading.Current(ticket) {
		return g.snapshot(), fetch.ErrSuperseded
	}
	g.loading.Finish(ticket)

	if len(rounds) == 0 {
		return g.snapshot(), game.ErrNoContent
	}
	g.rounds = rounds
	g.progress = game.RoundProgress{TotalRounds: len(rounds)}
	g.selected = ""
	g.status = game.StatusPlaying
	return g.snapshot(), nil
}

func (g *Game) ID() string { return g.id }

func (g *Game) Kind() models.GameKind { return models.GameGapFill }

func (g *Game) Snapshot() any { return g.State() }

// State returns a copy of the question
func (g *Game) State() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) snapshot() Snapshot {
	s := Snapshot{
		ID:       g.id,
		Kind:     models.GameGapFill,
		Status:   g.status,
		Progress: g.progress,
	}
	if g.status == game.StatusLoading || g.status == game.StatusCompleted {
		return s
	}

	round := g.rounds[g.progress.CurrentIndex]
	s.Before, s.After = round.Parts()
	s.Options = append([]string{}, round.Options...)
	if g.selected != "" {
		s.Selected = g.selected
		s.CorrectAnswer = round.CorrectAnswer
		s.Explanation = round.Explanation
	}
	return s
}

// SelectOption answers the current question. Only the first choice counts.
func (g *Game) SelectOption(option string) (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status != game.StatusPlaying {
		return g.snapshot(), nil
	}

	round := g.rounds[g.progress.CurrentIndex]
	if !round.HasOption(option) {
		return g.snapshot(), fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}

	g.selected = option
	if option == round.CorrectAnswer {
		g.status = game.StatusCorrect
		g.progress.Score++
		g.timers.After(game.AdvanceDelay, g.advance)
	} else {
		g.status = game.StatusWrong
	}
	return g.snapshot(), nil
}

// Continue leaves a wrongly answered question
func (g *Game) Continue() (Snapshot, error) {
	g.mu.Lock()
	if g.status != game.StatusWrong {
		defer g.mu.Unlock()
		return g.snapshot(), ErrNotAwaitingContinue
	}
	effect := g.advance()
	s := g.snapshot()
	g.mu.Unlock()

	if effect != nil {
		effect()
	}
	return s, nil
}

// advance shows the next question or completes the game. Caller holds mu;
// the returned effect must run after unlocking.
func (g *Game) advance() func() {
	g.timers.Reset()
	g.selected = ""
	if g.progress.Advance() {
		g.status = game.StatusPlaying
		return g.opts.Notify
	}

	g.status = game.StatusCompleted
	xp := g.progress.Score * game.PointsPerQuestion
	return func() {
		g.opts.Notify()
		g.opts.Report(models.GameGapFill, xp)
	}
}

// Stop cancels pending transitions and any load in flight
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timers.Reset()
	g.loading.Invalidate()
}
