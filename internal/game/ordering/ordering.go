// Package ordering implements the sentence scramble: rebuild a sentence
// from its shuffled words.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"englishexplorer/internal/fetch"
	"englishexplorer/internal/game"
	"englishexplorer/internal/models"
	"englishexplorer/internal/random"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

var (
	ErrUnknownToken    = errors.New("unknown token")
	ErrTokensRemaining = errors.New("place every word before checking")
	ErrNotFailed       = errors.New("no countdown to skip")
)

// Source yields the sentences for a play-through. Implementations fall
// back to built-in rounds, so an empty result means there is nothing to play.
type Source func(ctx context.Context) []models.SentenceRound

// Snapshot is the round as shown to the player. Explanation is only filled
// once the round is solved or failed.
type Snapshot struct {
	ID          string             `json:"id"`
	Kind        models.GameKind    `json:"kind"`
	Status      game.Status        `json:"status"`
	Progress    game.RoundProgress `json:"progress"`
	Remaining   []models.Token     `json:"remaining"`
	Placed      []models.Token     `json:"placed"`
	Countdown   int                `json:"countdown"`
	Explanation string             `json:"explanation,omitempty"`
}

// Game is one ordering play-through
type Game struct {
	mu      sync.Mutex
	opts    game.Options
	timers  *game.Timers
	source  Source
	loading fetch.Latest

	id        string
	status    game.Status
	rounds    []models.SentenceRound
	progress  game.RoundProgress
	remaining []models.Token
	placed    []models.Token
	countdown int
}

// New returns a game waiting for Load
func New(source Source, opts game.Options) (*Game, error) {
	if opts.Rand == nil {
		r, err := random.New(0)
		if err != nil {
			return nil, err
		}
		opts.Rand = r
	}
	g := &Game{
		opts:   opts,
		source: source,
		id:     uuid.NewString(),
		status: game.StatusLoading,
	}
	g.timers = game.NewTimers(&g.mu, opts.Scheduler)
	return g, nil
}

// Load fetches the rounds and starts the first one. A later Load supersedes
// an earlier one still in flight.
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
	g.startRound()
	return g.snapshot(), nil
}

// startRound scrambles the current sentence. Caller holds mu.
func (g *Game) startRound() {
	tokens := models.Tokenize(g.rounds[g.progress.CurrentIndex].Text)
	g.remaining = random.Shuffled(g.opts.Rand, tokens)
	g.placed = nil
	g.countdown = 0
	g.status = game.StatusPlaying
}

func (g *Game) ID() string { return g.id }

func (g *Game) Kind() models.GameKind { return models.GameOrdering }

func (g *Game) Snapshot() any { return g.State() }

// State returns a copy of the round
func (g *Game) State() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) snapshot() Snapshot {
	s := Snapshot{
		ID:        g.id,
		Kind:      models.GameOrdering,
		Status:    g.status,
		Progress:  g.progress,
		Remaining: append([]models.Token{}, g.remaining...),
		Placed:    append([]models.Token{}, g.placed...),
		Countdown: g.countdown,
	}
	if g.status == game.StatusCorrect || g.status == game.StatusFailed {
		s.Explanation = g.rounds[g.progress.CurrentIndex].Explanation
	}
	return s
}

// interactive reports whether tokens may be moved. Caller holds mu.
func (g *Game) interactive() bool {
	return g.status == game.StatusPlaying || g.status == game.StatusWrong
}

// SelectToken moves a word from the pool to the end of the sentence
func (g *Game) SelectToken(id int) (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.interactive() {
		return g.snapshot(), nil
	}

	var ok bool
	g.remaining, g.placed, ok = move(g.remaining, g.placed, id)
	if !ok {
		return g.snapshot(), fmt.Errorf("%w: %d", ErrUnknownToken, id)
	}
	g.status = game.StatusPlaying
	return g.snapshot(), nil
}

// RemoveToken returns a placed word to the pool
func (g *Game) RemoveToken(id int) (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.interactive() {
		return g.snapshot(), nil
	}

	var ok bool
	g.placed, g.remaining, ok = move(g.placed, g.remaining, id)
	if !ok {
		return g.snapshot(), fmt.Errorf("%w: %d", ErrUnknownToken, id)
	}
	g.status = game.StatusPlaying
	return g.snapshot(), nil
}

func move(from, to []models.Token, id int) ([]models.Token, []models.Token, bool) {
	for i, t := range from {
		if t.ID == id {
			rest := append(append([]models.Token{}, from[:i]...), from[i+1:]...)
			return rest, append(to, t), true
		}
	}
	return from, to, false
}

// CheckAnswer compares the placed sentence with the target, ignoring
// whitespace and case. The third wrong answer reveals the solution and
// starts the countdown to the next round.
func (g *Game) CheckAnswer() (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.interactive() {
		return g.snapshot(), nil
	}
	if len(g.remaining) > 0 {
		return g.snapshot(), ErrTokensRemaining
	}

	target := g.rounds[g.progress.CurrentIndex].Text
	if normalize(joinTokens(g.placed)) == normalize(target) {
		g.status = game.StatusCorrect
		g.progress.Score++
		g.timers.After(game.AdvanceDelay, g.advance)
		return g.snapshot(), nil
	}

	g.progress.AttemptsOnCurrent++
	if g.progress.AttemptsOnCurrent >= game.MaxOrderingTries {
		g.fail(target)
		return g.snapshot(), nil
	}

	g.status = game.StatusWrong
	g.timers.After(game.FeedbackClear, func() func() {
		if g.status != game.StatusWrong {
			return nil
		}
		g.status = game.StatusPlaying
		return g.opts.Notify
	})
	return g.snapshot(), nil
}

// fail shows the solution and starts the countdown. Caller holds mu.
func (g *Game) fail(target string) {
	g.progress.Failed = true
	g.status = game.StatusFailed
	g.placed = models.Tokenize(target)
	g.remaining = nil
	g.countdown = game.CountdownSeconds
	g.tick()
}

// tick schedules the next countdown step. Caller holds mu.
func (g *Game) tick() {
	g.timers.After(game.CountdownTick, func() func() {
		g.countdown--
		if g.countdown <= 0 {
			return g.advance()
		}
		g.tick()
		return g.opts.Notify
	})
}

// SkipCountdown moves on from a failed round without waiting
func (g *Game) SkipCountdown() (Snapshot, error) {
	g.mu.Lock()
	if g.status != game.StatusFailed {
		defer g.mu.Unlock()
		return g.snapshot(), ErrNotFailed
	}
	effect := g.advance()
	s := g.snapshot()
	g.mu.Unlock()

	if effect != nil {
		effect()
	}
	return s, nil
}

// advance starts the next round or completes the game. Caller holds mu;
// the returned effect must run after unlocking.
func (g *Game) advance() func() {
	g.timers.Reset()
	if g.progress.Advance() {
		g.startRound()
		return g.opts.Notify
	}

	g.status = game.StatusCompleted
	g.remaining = nil
	g.countdown = 0
	return func() {
		g.opts.Notify()
		g.opts.Report(models.GameOrdering, game.OrderingReward)
	}
}

// Stop cancels pending transitions and any load in flight
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timers.Reset()
	g.loading.Invalidate()
}

func joinTokens(tokens []models.Token) string {
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = t.Text
	}
	return strings.Join(words, " ")
}

// normalize drops all whitespace and folds case
func normalize(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), ""))
}
