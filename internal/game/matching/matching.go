// Package matching implements the memory game: find the lead word and
// complement of each vocabulary pair on a face-down board.
package matching

import (
	"errors"
	"fmt"
	"sync"

	"englishexplorer/internal/game"
	"englishexplorer/internal/models"
	"englishexplorer/internal/random"

	"github.com/google/uuid"
)

var ErrUnknownCard = errors.New("unknown card")

// Snapshot is the board as shown to the player
type Snapshot struct {
	ID        string             `json:"id"`
	Kind      models.GameKind    `json:"kind"`
	Status    game.Status        `json:"status"`
	Cards     []models.MatchCard `json:"cards"`
	Moves     int                `json:"moves"`
	Matches   int                `json:"matches"`
	Pairs     int                `json:"pairs"`
	Completed bool               `json:"completed"`
}

// Game is one matching play-through. Restart deals a fresh board in place.
type Game struct {
	mu     sync.Mutex
	opts   game.Options
	timers *game.Timers
	pool   []models.VocabularyPair

	id        string
	cards     []models.MatchCard
	faceUp    []int
	moves     int
	matches   int
	completed bool
}

// New deals a board from pool, which must hold at least game.MatchingPairs
// distinct pairs. Repeats are dropped so no two pairs on a board look alike.
func New(pool []models.VocabularyPair, opts game.Options) (*Game, error) {
	pool = models.DistinctPairs(pool)
	if len(pool) < game.MatchingPairs {
		return nil, fmt.Errorf("vocabulary pool has %d distinct pairs, need %d", len(pool), game.MatchingPairs)
	}
	if opts.Rand == nil {
		r, err := random.New(0)
		if err != nil {
			return nil, err
		}
		opts.Rand = r
	}

	g := &Game{opts: opts, pool: pool}
	g.timers = game.NewTimers(&g.mu, opts.Scheduler)
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.deal(); err != nil {
		return nil, err
	}
	return g, nil
}

// deal resets the board. Caller holds mu.
func (g *Game) deal() error {
	g.timers.Reset()

	pairs, err := random.Sample(g.opts.Rand, g.pool, game.MatchingPairs)
	if err != nil {
		return err
	}

	cards := make([]models.MatchCard, 0, len(pairs)*2)
	for i, p := range pairs {
		cards = append(cards,
			models.MatchCard{ID: i * 2, Label: p.Lead, PairKey: i, Role: models.RoleLead},
			models.MatchCard{ID: i*2 + 1, Label: p.Complement, PairKey: i, Role: models.RoleComplement},
		)
	}

	g.id = uuid.NewString()
	g.cards = random.Shuffled(g.opts.Rand, cards)
	g.faceUp = nil
	g.moves = 0
	g.matches = 0
	g.completed = false
	return nil
}

func (g *Game) ID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.id
}

func (g *Game) Kind() models.GameKind { return models.GameMatching }

func (g *Game) Snapshot() any { return g.State() }

// State returns a copy of the board
func (g *Game) State() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) snapshot() Snapshot {
	status := game.StatusPlaying
	if g.completed {
		status = game.StatusCompleted
	}
	return Snapshot{
		ID:        g.id,
		Kind:      models.GameMatching,
		Status:    status,
		Cards:     append([]models.MatchCard(nil), g.cards...),
		Moves:     g.moves,
		Matches:   g.matches,
		Pairs:     len(g.cards) / 2,
		Completed: g.completed,
	}
}

// SelectCard flips a card. Flipped or matched cards, and any selection while
// two cards await resolution, are ignored.
func (g *Game) SelectCard(id int) (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := g.indexOf(id)
	if idx < 0 {
		return g.snapshot(), fmt.Errorf("%w: %d", ErrUnknownCard, id)
	}

	card := &g.cards[idx]
	if g.completed || len(g.faceUp) == 2 || card.Flipped || card.Matched {
		return g.snapshot(), nil
	}

	card.Flipped = true
	g.faceUp = append(g.faceUp, idx)
	if len(g.faceUp) == 2 {
		g.moves++
		g.resolve()
	}
	return g.snapshot(), nil
}

// resolve schedules the outcome of the two face-up cards. Caller holds mu.
func (g *Game) resolve() {
	a, b := g.faceUp[0], g.faceUp[1]

	if g.cards[a].PairKey != g.cards[b].PairKey {
		g.timers.After(game.MismatchDelay, func() func() {
			g.cards[a].Flipped = false
			g.cards[b].Flipped = false
			g.faceUp = nil
			return g.opts.Notify
		})
		return
	}

	g.timers.After(game.MatchDelay, func() func() {
		g.cards[a].Matched = true
		g.cards[b].Matched = true
		g.faceUp = nil
		g.matches++
		if g.matches == len(g.cards)/2 {
			g.timers.After(game.CompletionDelay, func() func() {
				g.completed = true
				return func() {
					g.opts.Notify()
					g.opts.Report(models.GameMatching, game.MatchingReward)
				}
			})
		}
		return g.opts.Notify
	})
}

// Restart deals a new board and cancels anything pending
func (g *Game) Restart() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	// the pool was validated in New, so sampling cannot fail
	_ = g.deal()
	return g.snapshot()
}

// Stop cancels pending transitions
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timers.Reset()
}

func (g *Game) indexOf(id int) int {
	for i, c := range g.cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}
