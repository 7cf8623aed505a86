// Package runloop runs closures one at a time on a single goroutine and
// delivers single-shot timer expiries onto that same goroutine.
package runloop

import (
	"context"
	"sync"
	"time"
)

const defaultBuffer = 64

// Loop serializes work onto the goroutine that calls Run.
type Loop struct {
	events chan func()

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// New creates a loop whose queue holds buffer pending closures.
func New(buffer int) *Loop {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Loop{
		events: make(chan func(), buffer),
		done:   make(chan struct{}),
	}
}

// Run executes posted closures until ctx is cancelled. Closures still queued
// at cancellation are dropped.
func (l *Loop) Run(ctx context.Context) {
	defer func() {
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()
		close(l.done)
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.events:
			fn()
		}
	}
}

// Post queues fn to run on the loop goroutine. It blocks while the queue is
// full and returns false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return false
	}
	select {
	case l.events <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Timer is a single-shot timer whose callback runs on the loop goroutine.
type Timer struct {
	t *time.Timer
	// stopped and fired are only touched on the loop goroutine.
	stopped bool
	fired   bool
}

// AfterFunc schedules fn to run on the loop after d. It must be called from
// the loop goroutine, as must Stop on the returned timer.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *Timer {
	timer := &Timer{}
	timer.t = time.AfterFunc(d, func() {
		l.Post(func() {
			if timer.stopped {
				return
			}
			timer.fired = true
			fn()
		})
	})
	return timer
}

// Stop cancels the timer. The callback will not run afterwards, even when its
// expiry is already queued on the loop. It reports whether the call stopped a
// pending timer.
func (t *Timer) Stop() bool {
	if t == nil || t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.t.Stop()
	return true
}
