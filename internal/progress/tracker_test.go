package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddXPRecomputesLevel(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, 1, tr.State().Level)

	tr.AddXP("matching", 100)
	assert.Equal(t, 100, tr.State().XP)
	assert.Equal(t, 1, tr.State().Level)

	state := tr.AddXP("ordering", 400)
	assert.Equal(t, 500, state.XP)
	assert.Equal(t, 2, state.Level)
}

func TestLevelUpFiresOncePerCrossing(t *testing.T) {
	tr := NewTracker()
	var events []LevelUp
	tr.Subscribe(func(e LevelUp) { events = append(events, e) })

	tr.AddXP("reading", 60)
	tr.AddXP("ordering", 150)
	tr.AddXP("ordering", 150)
	assert.Empty(t, events)

	tr.AddXP("ordering", 150)
	assert.Equal(t, []LevelUp{{Level: 2, XP: 510}}, events)

	tr.AddXP("gapfill", 100)
	assert.Len(t, events, 1)
}

func TestZeroXPNeverChangesLevel(t *testing.T) {
	tr := NewTracker()
	fired := false
	tr.Subscribe(func(LevelUp) { fired = true })

	tr.AddXP("gapfill", 0)
	assert.Equal(t, 1, tr.State().Level)
	assert.Equal(t, 0, tr.State().XP)
	assert.False(t, fired)
}

func TestNegativeXPIgnored(t *testing.T) {
	tr := NewTracker()
	tr.AddXP("reading", 40)
	state := tr.AddXP("bogus", -100)
	assert.Equal(t, 40, state.XP)
}

func TestAwardCallbacks(t *testing.T) {
	tr := NewTracker()
	got := map[string]int{}
	tr.OnAward(func(source string, amount int) { got[source] += amount })

	tr.AddXP("matching", 100)
	tr.AddXP("matching", 100)
	tr.AddXP("reading", 20)
	assert.Equal(t, map[string]int{"matching": 200, "reading": 20}, got)
}

func TestConcurrentAwards(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.AddXP("reading", 20)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, tr.State().XP)
	assert.Equal(t, 3, tr.State().Level)
}
