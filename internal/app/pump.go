package app

import (
	"context"
	"sync"
	"time"

	"github.com/five82/helios/internal/controller"
	"github.com/five82/helios/internal/protocol"
	"github.com/five82/helios/internal/runloop"
)

// loopScheduler runs controller timers on the loop goroutine.
type loopScheduler struct {
	loop *runloop.Loop
}

func (s loopScheduler) AfterFunc(d time.Duration, fn func()) controller.Timer {
	return s.loop.AfterFunc(d, fn)
}

// loopHandler moves transport callbacks onto the loop goroutine, where the
// controller lives.
type loopHandler struct {
	loop *runloop.Loop
	ctrl *controller.Controller
}

func (h loopHandler) OnSendSucceeded() {
	h.loop.Post(h.ctrl.OnSendSucceeded)
}

func (h loopHandler) OnSendFailed(reason protocol.Result) {
	h.loop.Post(func() { h.ctrl.OnSendFailed(reason) })
}

func (h loopHandler) OnMessageReceived(fields protocol.Dict) {
	h.loop.Post(func() { h.ctrl.OnMessageReceived(fields) })
}

func (h loopHandler) OnMessageDropped(reason protocol.Result) {
	h.loop.Post(func() { h.ctrl.OnMessageDropped(reason) })
}

func (h loopHandler) OnConnectivityChanged(connected bool) {
	h.loop.Post(func() { h.ctrl.OnConnectivityChanged(connected) })
}

// loopNavigator forwards UI navigation onto the loop goroutine. Calls never
// block: they are queued in order and a drain goroutine posts them, so the UI
// keeps reading messages while the loop waits on the sink. ctrl is set once
// after construction, before the UI starts.
type loopNavigator struct {
	loop *runloop.Loop
	ctrl *controller.Controller

	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

func newLoopNavigator(loop *runloop.Loop) *loopNavigator {
	return &loopNavigator{loop: loop, wake: make(chan struct{}, 1)}
}

func (n *loopNavigator) Step(delta int32) {
	n.enqueue(func() { n.ctrl.Step(delta) })
}

func (n *loopNavigator) Today() {
	n.enqueue(func() { n.ctrl.Today() })
}

func (n *loopNavigator) Goto(offset int32) {
	n.enqueue(func() { n.ctrl.NavigateTo(offset) })
}

func (n *loopNavigator) enqueue(fn func()) {
	n.mu.Lock()
	n.queue = append(n.queue, fn)
	n.mu.Unlock()
	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// run posts queued navigation to the loop until ctx is cancelled or the loop
// stops.
func (n *loopNavigator) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-n.wake:
		}
		n.mu.Lock()
		batch := n.queue
		n.queue = nil
		n.mu.Unlock()
		for _, fn := range batch {
			if !n.loop.Post(fn) {
				return
			}
		}
	}
}
