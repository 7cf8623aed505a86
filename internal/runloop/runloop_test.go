package runloop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T) *Loop {
	t.Helper()
	l := New(0)
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-l.Done()
	})
	return l
}

// onLoop runs fn on the loop and waits for it.
func onLoop(t *testing.T, l *Loop, fn func()) {
	t.Helper()
	done := make(chan struct{})
	require.True(t, l.Post(func() {
		fn()
		close(done)
	}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not run posted closure")
	}
}

func TestPostRunsInOrder(t *testing.T) {
	l := startLoop(t)

	var got []int
	for i := 0; i < 10; i++ {
		i := i
		require.True(t, l.Post(func() { got = append(got, i) }))
	}
	onLoop(t, l, func() {})
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestTimerFiresOnLoop(t *testing.T) {
	l := startLoop(t)

	fired := make(chan struct{})
	onLoop(t, l, func() {
		l.AfterFunc(5*time.Millisecond, func() { close(fired) })
	})
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestStoppedTimerNeverFires(t *testing.T) {
	l := startLoop(t)

	var count atomic.Int32
	var timer *Timer
	onLoop(t, l, func() {
		timer = l.AfterFunc(time.Millisecond, func() { count.Add(1) })
		// Let the expiry land in the queue before stopping.
		time.Sleep(20 * time.Millisecond)
		assert.True(t, timer.Stop())
	})
	onLoop(t, l, func() {
		assert.False(t, timer.Stop(), "second Stop reports nothing to stop")
	})
	time.Sleep(20 * time.Millisecond)
	onLoop(t, l, func() {})
	assert.Equal(t, int32(0), count.Load())
}

func TestStopAfterFireReportsFalse(t *testing.T) {
	l := startLoop(t)

	fired := make(chan struct{})
	var timer *Timer
	onLoop(t, l, func() {
		timer = l.AfterFunc(time.Millisecond, func() { close(fired) })
	})
	<-fired
	onLoop(t, l, func() {
		assert.False(t, timer.Stop())
	})
}

func TestPostAfterShutdown(t *testing.T) {
	l := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	cancel()
	<-l.Done()

	assert.False(t, l.Post(func() {}))
}
