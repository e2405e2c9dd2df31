// Package fetch keeps a controller to one outstanding content request.
package fetch

import (
	"context"
	"errors"
)

// ErrSuperseded is returned to a request whose result was discarded because
// a newer request, a reset or a navigation replaced it.
var ErrSuperseded = errors.New("request superseded")

// Latest tracks the newest fetch. Starting a fetch cancels the previous
// one; results are accepted only from the newest. Not safe for concurrent
// use: callers guard it with their own lock.
type Latest struct {
	gen    uint64
	cancel context.CancelFunc
}

// Begin starts a fetch derived from parent and returns its ticket
func (l *Latest) Begin(parent context.Context) (context.Context, uint64) {
	l.Invalidate()
	ctx, cancel := context.WithCancel(parent)
	l.cancel = cancel
	return ctx, l.gen
}

// Current reports whether ticket still belongs to the newest fetch
func (l *Latest) Current(ticket uint64) bool {
	return ticket == l.gen
}

// Finish releases the context of ticket if it is still the newest
func (l *Latest) Finish(ticket uint64) {
	if l.Current(ticket) && l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

// Invalidate cancels any fetch in flight so its result will be ignored
func (l *Latest) Invalidate() {
	l.gen++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}
