// Package schedule runs delayed, cancelable callbacks.
package schedule

import "time"

// Task is a pending callback
type Task interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the task before it fired.
	Stop() bool
}

// Scheduler runs f once after d
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

// Real schedules on the wall clock with time.AfterFunc
type Real struct{}

// NewReal returns the wall-clock scheduler
func NewReal() Real {
	return Real{}
}

func (Real) AfterFunc(d time.Duration, f func()) Task {
	return time.AfterFunc(d, f)
}
