package matching

import (
	"math/rand/v2"
	"testing"
	"time"

	"englishexplorer/internal/game"
	"englishexplorer/internal/models"
	"englishexplorer/internal/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPool = []models.VocabularyPair{
	{Lead: "Get", Complement: "up"},
	{Lead: "Get", Complement: "dressed"},
	{Lead: "Have", Complement: "breakfast"},
	{Lead: "Walk", Complement: "the dog"},
	{Lead: "Go", Complement: "to school"},
	{Lead: "Have", Complement: "lunch"},
	{Lead: "Make", Complement: "a snack"},
	{Lead: "Do", Complement: "homework"},
	{Lead: "Have", Complement: "a shower"},
	{Lead: "Go", Complement: "to bed"},
}

type harness struct {
	game    *Game
	sched   *schedule.Manual
	awards  []int
	updates int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{sched: schedule.NewManual()}
	g, err := New(testPool, game.Options{
		Scheduler: h.sched,
		Rand:      rand.New(rand.NewPCG(1, 2)),
		Reporter: game.ReporterFunc(func(kind models.GameKind, xp int) {
			assert.Equal(t, models.GameMatching, kind)
			h.awards = append(h.awards, xp)
		}),
		OnUpdate: func() { h.updates++ },
	})
	require.NoError(t, err)
	h.game = g
	return h
}

// partners maps each pair key to its two card ids
func partners(s Snapshot) map[int][]int {
	out := map[int][]int{}
	for _, c := range s.Cards {
		out[c.PairKey] = append(out[c.PairKey], c.ID)
	}
	return out
}

// mismatched returns two card ids from different pairs
func mismatched(s Snapshot) (int, int) {
	first := s.Cards[0]
	for _, c := range s.Cards[1:] {
		if c.PairKey != first.PairKey {
			return first.ID, c.ID
		}
	}
	panic("board has a single pair")
}

func cardByID(s Snapshot, id int) models.MatchCard {
	for _, c := range s.Cards {
		if c.ID == id {
			return c
		}
	}
	panic("card not found")
}

func TestNewDealsSixteenFaceDownCards(t *testing.T) {
	h := newHarness(t)
	s := h.game.State()

	require.Len(t, s.Cards, 16)
	assert.Equal(t, 8, s.Pairs)
	for key, ids := range partners(s) {
		assert.Len(t, ids, 2, "pair %d", key)
	}
	for _, c := range s.Cards {
		assert.False(t, c.Flipped)
		assert.False(t, c.Matched)
	}
	assert.NotEmpty(t, s.ID)
}

func TestNewRejectsSmallPool(t *testing.T) {
	_, err := New(testPool[:7], game.Options{Scheduler: schedule.NewManual()})
	assert.Error(t, err)
}

func TestNewRejectsRepeatedPairs(t *testing.T) {
	pool := append([]models.VocabularyPair{}, testPool[:7]...)
	for range 5 {
		pool = append(pool, testPool[0])
	}
	require.Len(t, pool, 12)

	_, err := New(pool, game.Options{Scheduler: schedule.NewManual()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "7 distinct pairs")
}

func TestBoardNeverRepeatsAPair(t *testing.T) {
	pool := append(append([]models.VocabularyPair{}, testPool...), testPool...)
	g, err := New(pool, game.Options{
		Scheduler: schedule.NewManual(),
		Rand:      rand.New(rand.NewPCG(3, 4)),
	})
	require.NoError(t, err)

	labels := map[int][2]string{}
	for _, c := range g.State().Cards {
		l := labels[c.PairKey]
		if c.Role == models.RoleLead {
			l[0] = c.Label
		} else {
			l[1] = c.Label
		}
		labels[c.PairKey] = l
	}
	seen := map[[2]string]bool{}
	for _, l := range labels {
		assert.False(t, seen[l], "pair %v dealt twice", l)
		seen[l] = true
	}
	assert.Len(t, seen, 8)
}

func TestMatchResolvesAfterDelay(t *testing.T) {
	h := newHarness(t)
	ids := partners(h.game.State())[3]

	_, err := h.game.SelectCard(ids[0])
	require.NoError(t, err)
	s, err := h.game.SelectCard(ids[1])
	require.NoError(t, err)
	assert.Equal(t, 1, s.Moves)
	assert.True(t, cardByID(s, ids[1]).Flipped)
	assert.False(t, cardByID(s, ids[1]).Matched)

	h.sched.Advance(499 * time.Millisecond)
	assert.False(t, cardByID(h.game.State(), ids[0]).Matched)

	h.sched.Advance(time.Millisecond)
	s = h.game.State()
	assert.True(t, cardByID(s, ids[0]).Matched)
	assert.True(t, cardByID(s, ids[1]).Matched)
	assert.Equal(t, 1, s.Matches)
	assert.Equal(t, 1, h.updates)
}

func TestMismatchFlipsBack(t *testing.T) {
	h := newHarness(t)
	a, b := mismatched(h.game.State())

	h.game.SelectCard(a)
	h.game.SelectCard(b)

	h.sched.Advance(999 * time.Millisecond)
	assert.True(t, cardByID(h.game.State(), a).Flipped)

	h.sched.Advance(time.Millisecond)
	s := h.game.State()
	assert.False(t, cardByID(s, a).Flipped)
	assert.False(t, cardByID(s, b).Flipped)
	assert.Zero(t, s.Matches)
}

func TestThirdSelectionIgnoredWhileResolving(t *testing.T) {
	h := newHarness(t)
	s := h.game.State()
	a, b := mismatched(s)

	var third int
	for _, c := range s.Cards {
		if c.ID != a && c.ID != b {
			third = c.ID
			break
		}
	}

	h.game.SelectCard(a)
	h.game.SelectCard(b)
	s, err := h.game.SelectCard(third)
	require.NoError(t, err)
	assert.False(t, cardByID(s, third).Flipped)
	assert.Equal(t, 1, s.Moves)
}

func TestReselectingFlippedCardIsNoop(t *testing.T) {
	h := newHarness(t)
	id := h.game.State().Cards[0].ID

	h.game.SelectCard(id)
	s, err := h.game.SelectCard(id)
	require.NoError(t, err)
	assert.Zero(t, s.Moves)
	assert.Zero(t, h.sched.Pending())
}

func TestUnknownCard(t *testing.T) {
	h := newHarness(t)
	_, err := h.game.SelectCard(99)
	assert.ErrorIs(t, err, ErrUnknownCard)
}

func TestCompletionReportsAfterDelay(t *testing.T) {
	h := newHarness(t)
	for _, ids := range partners(h.game.State()) {
		h.game.SelectCard(ids[0])
		h.game.SelectCard(ids[1])
		h.sched.Advance(game.MatchDelay)
	}

	s := h.game.State()
	assert.Equal(t, 8, s.Matches)
	assert.False(t, s.Completed)
	assert.Empty(t, h.awards)

	h.sched.Advance(game.CompletionDelay)
	s = h.game.State()
	assert.True(t, s.Completed)
	assert.Equal(t, game.StatusCompleted, s.Status)
	assert.Equal(t, []int{100}, h.awards)
}

func TestRestartInvalidatesPendingTimers(t *testing.T) {
	h := newHarness(t)
	old := h.game.State()
	ids := partners(old)[0]

	h.game.SelectCard(ids[0])
	h.game.SelectCard(ids[1])

	s := h.game.Restart()
	assert.NotEqual(t, old.ID, s.ID)
	assert.Zero(t, s.Moves)

	h.sched.Advance(5 * time.Second)
	s = h.game.State()
	assert.Zero(t, s.Matches)
	for _, c := range s.Cards {
		assert.False(t, c.Matched)
		assert.False(t, c.Flipped)
	}
	assert.Zero(t, h.updates)
}

func TestStopCancelsCompletion(t *testing.T) {
	h := newHarness(t)
	for _, ids := range partners(h.game.State()) {
		h.game.SelectCard(ids[0])
		h.game.SelectCard(ids[1])
		h.sched.Advance(game.MatchDelay)
	}

	h.game.Stop()
	h.sched.Advance(time.Minute)
	assert.Empty(t, h.awards)
}
