package schedule

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualFiresInDueOrder(t *testing.T) {
	m := NewManual()
	var fired []string

	m.AfterFunc(1000*time.Millisecond, func() { fired = append(fired, "mismatch") })
	m.AfterFunc(500*time.Millisecond, func() { fired = append(fired, "match") })
	m.AfterFunc(1500*time.Millisecond, func() { fired = append(fired, "advance") })

	m.Advance(499 * time.Millisecond)
	assert.Empty(t, fired)

	m.Advance(1 * time.Millisecond)
	assert.Equal(t, []string{"match"}, fired)

	m.Advance(time.Second)
	assert.Equal(t, []string{"match", "mismatch", "advance"}, fired)
	assert.Equal(t, 0, m.Pending())
}

func TestManualStoppedTaskNeverFires(t *testing.T) {
	m := NewManual()
	fired := false
	task := m.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, task.Stop())
	assert.False(t, task.Stop())

	m.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestManualChainedTasksWithinWindow(t *testing.T) {
	m := NewManual()
	ticks := 0
	var tick func()
	tick = func() {
		ticks++
		if ticks < 20 {
			m.AfterFunc(time.Second, tick)
		}
	}
	m.AfterFunc(time.Second, tick)

	m.Advance(5 * time.Second)
	assert.Equal(t, 5, ticks)

	m.Advance(time.Minute)
	assert.Equal(t, 20, ticks)
	assert.Equal(t, 65*time.Second, m.Now())
}

func TestRealSchedulerFires(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	NewReal().AfterFunc(time.Millisecond, wg.Done)
	wg.Wait()
}

func TestRealSchedulerStop(t *testing.T) {
	task := NewReal().AfterFunc(time.Hour, func() { t.Error("stopped task fired") })
	assert.True(t, task.Stop())
}
