package controller_test

import (
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/five82/helios/internal/controller"
	"github.com/five82/helios/internal/controller/controllermock"
	"github.com/five82/helios/internal/daytimes"
	"github.com/five82/helios/internal/protocol"
)

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fire runs the callback the way the run loop would: never after Stop.
func (t *fakeTimer) fire() {
	if t.stopped || t.fired {
		return
	}
	t.fired = true
	t.fn()
}

type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) controller.Timer {
	t := &fakeTimer{delay: d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) pending() []*fakeTimer {
	var out []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

type sinkEvent struct {
	status string
	day    *daytimes.DayRecord
}

type recordingSink struct {
	events []sinkEvent
}

func (s *recordingSink) ShowStatus(text string) {
	s.events = append(s.events, sinkEvent{status: text})
}

func (s *recordingSink) ShowDay(rec daytimes.DayRecord) {
	s.events = append(s.events, sinkEvent{day: &rec})
}

func (s *recordingSink) statuses() []string {
	var out []string
	for _, e := range s.events {
		if e.day == nil {
			out = append(out, e.status)
		}
	}
	return out
}

func (s *recordingSink) days() []daytimes.DayRecord {
	var out []daytimes.DayRecord
	for _, e := range s.events {
		if e.day != nil {
			out = append(out, *e.day)
		}
	}
	return out
}

func (s *recordingSink) reset() {
	s.events = nil
}

type harness struct {
	ch    *controllermock.MockChannel
	sink  *recordingSink
	sched *fakeScheduler
	ctl   *controller.Controller
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		ch:    &controllermock.MockChannel{},
		sink:  &recordingSink{},
		sched: &fakeScheduler{},
	}
	h.ctl = controller.New(h.ch, h.sink, h.sched, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { h.ch.AssertExpectations(t) })
	return h
}

func september() [3]daytimes.Fields {
	return [3]daytimes.Fields{
		{Date: "Tue Sep 02", Dawn: "05:59", Sunrise: "06:35", Sunset: "19:48", Dusk: "20:24"},
		{Date: "Wed Sep 03", Dawn: "06:01", Sunrise: "06:37", Sunset: "19:46", Dusk: "20:22"},
		{Date: "Thu Sep 04", Dawn: "06:03", Sunrise: "06:38", Sunset: "19:44", Dusk: "20:20"},
	}
}

func TestNavigateEmptyCacheShowsPendingThenSends(t *testing.T) {
	h := newHarness(t)
	h.ch.On("Send", protocol.Request(0)).Return(protocol.OK).Once()

	h.ctl.NavigateTo(0)

	require.NotEmpty(t, h.sink.events)
	assert.Equal(t, controller.StatusPending, h.sink.events[0].status)
	assert.Empty(t, h.sink.days())
	assert.Equal(t, controller.AwaitingResponse, h.ctl.State())
	assert.Empty(t, h.sched.pending())
}

func TestBundleShowsSelectedDay(t *testing.T) {
	t.Run("bundle after navigation", func(t *testing.T) {
		h := newHarness(t)
		h.ch.On("Send", protocol.Request(5)).Return(protocol.OK).Once()

		h.ctl.NavigateTo(5)
		h.sink.reset()
		h.ctl.OnMessageReceived(protocol.BundleDict(5, september()))

		days := h.sink.days()
		require.Len(t, days, 1)
		assert.Equal(t, daytimes.DayRecord{
			Valid: true, Offset: 5, Date: "Wed Sep 03",
			Dawn: "06:01", Sunrise: "06:37", Sunset: "19:46", Dusk: "20:22",
		}, days[0])
		assert.Equal(t, controller.Idle, h.ctl.State())
	})

	t.Run("navigation into cached window is instant", func(t *testing.T) {
		h := newHarness(t)
		h.ctl.OnMessageReceived(protocol.BundleDict(5, september()))
		assert.Empty(t, h.sink.days(), "offset 0 is outside the 4..6 window")

		h.ch.On("Send", protocol.Request(5)).Return(protocol.OK).Once()
		h.ctl.NavigateTo(5)

		require.NotEmpty(t, h.sink.events)
		first := h.sink.events[0]
		require.NotNil(t, first.day, "cached day must be shown before any status")
		assert.True(t, first.day.Valid)
		assert.Equal(t, int32(5), first.day.Offset)
		assert.NotContains(t, h.sink.statuses(), controller.StatusPending)
	})
}

func TestNavigateFarOffsetShowsBundle(t *testing.T) {
	for _, offset := range []int32{9999, math.MaxInt32, math.MinInt32} {
		h := newHarness(t)
		h.ch.On("Send", protocol.Request(offset)).Return(protocol.OK).Once()

		h.ctl.NavigateTo(offset)
		h.sink.reset()
		h.ctl.OnMessageReceived(protocol.BundleDict(offset, september()))

		days := h.sink.days()
		require.Len(t, days, 1, "offset %d", offset)
		assert.True(t, days[0].Valid)
		assert.Equal(t, offset, days[0].Offset)
		assert.Equal(t, "Wed Sep 03", days[0].Date)
	}
}

func TestBundleWithEmptySelectedSlotShowsNothing(t *testing.T) {
	h := newHarness(t)
	days := september()
	days[1] = daytimes.Fields{}
	h.ctl.OnMessageReceived(protocol.BundleDict(0, days))

	assert.Empty(t, h.sink.events)
	rec, ok := h.ctl.Cache().Lookup(0)
	require.True(t, ok)
	assert.False(t, rec.Valid)
}

func TestOutboxFailureSchedulesRetry(t *testing.T) {
	h := newHarness(t)
	h.ch.On("Send", protocol.Request(0)).Return(protocol.Busy).Once()

	h.ctl.RequestTimes()

	assert.Equal(t, []string{"outbox: BUSY"}, h.sink.statuses())
	pending := h.sched.pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 2000*time.Millisecond, pending[0].delay)
	assert.Equal(t, controller.RetryScheduled, h.ctl.State())

	h.ch.On("Send", protocol.Request(0)).Return(protocol.OK).Once()
	pending[0].fire()

	h.ch.AssertNumberOfCalls(t, "Send", 2)
	assert.Empty(t, h.sched.pending())
	assert.False(t, h.ctl.RetryPending())
	assert.Equal(t, controller.AwaitingResponse, h.ctl.State())
}

func TestSendFailuresKeepOneTimer(t *testing.T) {
	h := newHarness(t)

	h.ctl.OnSendFailed(protocol.SendTimeout)
	h.ctl.OnSendFailed(protocol.SendRejected)

	pending := h.sched.pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 1200*time.Millisecond, pending[0].delay)
	assert.True(t, h.sched.timers[0].stopped, "first timer must be cancelled")
	assert.Equal(t, []string{"send failed: TIMEOUT", "send failed: REJECTED"}, h.sink.statuses())
}

func TestOutboxAndSendFailureKeepOneTimer(t *testing.T) {
	h := newHarness(t)
	h.ch.On("Send", mock.Anything).Return(protocol.NotConnected).Once()

	h.ctl.RequestTimes()
	h.ctl.OnSendFailed(protocol.Closed)

	pending := h.sched.pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 1200*time.Millisecond, pending[0].delay)
}

func TestReplacedTimerCallbackIsIgnored(t *testing.T) {
	h := newHarness(t)

	h.ctl.OnSendFailed(protocol.Busy)
	h.ctl.OnSendFailed(protocol.Busy)

	// Simulate an expiry that raced with cancellation.
	h.sched.timers[0].fn()
	h.ch.AssertNotCalled(t, "Send", mock.Anything)
	assert.True(t, h.ctl.RetryPending())
}

func TestHandshakeWinsOverBundle(t *testing.T) {
	h := newHarness(t)
	h.ch.On("Send", protocol.Request(0)).Return(protocol.OK).Once()

	payload := protocol.BundleDict(0, september())
	payload[protocol.KeyHello] = 1
	h.ctl.OnMessageReceived(payload)

	_, ok := h.ctl.Cache().Center()
	assert.False(t, ok, "bundle must be ignored")
	assert.Empty(t, h.sink.days())
	assert.Equal(t, []string{controller.StatusConnected, controller.StatusPending}, h.sink.statuses())
}

func TestHandshakeClearsCacheAndRequests(t *testing.T) {
	h := newHarness(t)
	h.ch.On("Send", protocol.Request(3)).Return(protocol.OK).Twice()

	h.ctl.NavigateTo(3)
	h.ctl.OnMessageReceived(protocol.BundleDict(3, september()))
	rec, ok := h.ctl.Cache().Lookup(3)
	require.True(t, ok)
	require.True(t, rec.Valid)

	h.ctl.OnMessageReceived(protocol.HandshakeDict())

	_, ok = h.ctl.Cache().Lookup(3)
	assert.False(t, ok)
	h.ch.AssertNumberOfCalls(t, "Send", 2)
}

func TestLegacyPayloadShownWithoutCaching(t *testing.T) {
	h := newHarness(t)

	h.ctl.OnMessageReceived(protocol.Dict{protocol.KeyDawn: "06:10"})

	days := h.sink.days()
	require.Len(t, days, 1)
	assert.Equal(t, daytimes.DayRecord{Valid: true, Offset: 0, Dawn: "06:10"}, days[0])
	_, ok := h.ctl.Cache().Center()
	assert.False(t, ok)
	assert.Equal(t, [3]daytimes.DayRecord{}, h.ctl.Cache().Snapshot())
}

func TestLegacyPayloadUsesSelectedOffset(t *testing.T) {
	h := newHarness(t)
	h.ch.On("Send", protocol.Request(-2)).Return(protocol.OK).Once()

	h.ctl.NavigateTo(-2)
	h.ctl.OnMessageReceived(protocol.LegacyDict(daytimes.Fields{Date: "Mon Sep 01", Sunset: "19:50"}))

	days := h.sink.days()
	require.Len(t, days, 1)
	assert.Equal(t, int32(-2), days[0].Offset)
	assert.Equal(t, "19:50", days[0].Sunset)
}

func TestHostErrorIsTerminal(t *testing.T) {
	h := newHarness(t)

	h.ctl.OnMessageReceived(protocol.ErrorDict("Calc error"))

	assert.Equal(t, []string{"error: Calc error"}, h.sink.statuses())
	assert.Empty(t, h.sched.timers)
	_, ok := h.ctl.Cache().Center()
	assert.False(t, ok)
}

func TestDroppedInboundIsNotRetried(t *testing.T) {
	h := newHarness(t)

	h.ctl.OnMessageDropped(protocol.BufferOverflow)

	assert.Equal(t, []string{"dropped: BUF_OVERFLOW"}, h.sink.statuses())
	assert.Empty(t, h.sched.timers)
}

func TestUnrecognizedPayloadIgnored(t *testing.T) {
	h := newHarness(t)

	h.ctl.OnMessageReceived(protocol.Dict{"BATTERY": 80})
	h.ctl.OnSendSucceeded()

	assert.Empty(t, h.sink.events)
	assert.Empty(t, h.sched.timers)
}

func TestConnectivity(t *testing.T) {
	t.Run("connect schedules one delayed fetch", func(t *testing.T) {
		h := newHarness(t)

		h.ctl.OnConnectivityChanged(true)

		assert.Equal(t, []string{controller.StatusConnecting}, h.sink.statuses())
		pending := h.sched.pending()
		require.Len(t, pending, 1)
		assert.Equal(t, 400*time.Millisecond, pending[0].delay)

		h.ch.On("Send", protocol.Request(0)).Return(protocol.OK).Once()
		pending[0].fire()
	})

	t.Run("disconnect cancels pending retry", func(t *testing.T) {
		h := newHarness(t)

		h.ctl.OnSendFailed(protocol.NotConnected)
		h.ctl.OnConnectivityChanged(false)

		assert.Empty(t, h.sched.pending())
		assert.False(t, h.ctl.RetryPending())
		assert.Equal(t, controller.Idle, h.ctl.State())
		assert.Equal(t, controller.StatusWaitingForHost, h.sink.statuses()[1])
	})

	t.Run("reconnect after pending retry leaves one timer", func(t *testing.T) {
		h := newHarness(t)

		h.ctl.OnSendFailed(protocol.NotConnected)
		h.ctl.OnConnectivityChanged(false)
		h.ctl.OnConnectivityChanged(true)
		h.ctl.OnConnectivityChanged(true)

		pending := h.sched.pending()
		require.Len(t, pending, 1)
		assert.Equal(t, 400*time.Millisecond, pending[0].delay)
	})
}

func TestLateBundleIsCachedButNotShown(t *testing.T) {
	h := newHarness(t)
	h.ch.On("Send", mock.Anything).Return(protocol.OK)

	h.ctl.NavigateTo(0)
	h.ctl.Step(10)
	h.sink.reset()

	// Answer to the request for offset 0 arrives after the user moved on.
	h.ctl.OnMessageReceived(protocol.BundleDict(0, september()))
	assert.Empty(t, h.sink.days())
	assert.Equal(t, int32(10), h.ctl.Selected())

	// Navigating back serves it from the cache.
	h.ctl.NavigateTo(1)
	days := h.sink.days()
	require.Len(t, days, 1)
	assert.Equal(t, "Thu Sep 04", days[0].Date)
}

func TestRequestOnCacheHitSkipsPending(t *testing.T) {
	h := newHarness(t)
	h.ctl.OnMessageReceived(protocol.BundleDict(0, september()))
	h.sink.reset()

	h.ch.On("Send", protocol.Request(0)).Return(protocol.OK).Once()
	h.ctl.RequestTimes()

	assert.Empty(t, h.sink.statuses())
}

func TestStepAndToday(t *testing.T) {
	h := newHarness(t)
	h.ch.On("Send", mock.Anything).Return(protocol.OK)

	h.ctl.Step(-1)
	h.ctl.Step(-1)
	assert.Equal(t, int32(-2), h.ctl.Selected())

	h.ctl.Today()
	assert.Equal(t, int32(0), h.ctl.Selected())
	h.ch.AssertCalled(t, "Send", protocol.Request(-2))
	h.ch.AssertCalled(t, "Send", protocol.Request(0))
}

func TestStepStopsAtLimits(t *testing.T) {
	h := newHarness(t)
	h.ch.On("Send", mock.Anything).Return(protocol.OK)

	h.ctl.NavigateTo(math.MaxInt32 - 1)
	h.ctl.Step(1)
	h.ctl.Step(1)
	assert.Equal(t, int32(math.MaxInt32), h.ctl.Selected())

	h.ctl.NavigateTo(math.MinInt32 + 1)
	h.ctl.Step(-1)
	h.ctl.Step(-1)
	assert.Equal(t, int32(math.MinInt32), h.ctl.Selected())

	h.ch.AssertCalled(t, "Send", protocol.Request(math.MaxInt32))
	h.ch.AssertCalled(t, "Send", protocol.Request(math.MinInt32))
}

func TestCloseCancelsRetry(t *testing.T) {
	h := newHarness(t)

	h.ctl.OnSendFailed(protocol.Busy)
	h.ctl.Close()
	h.ctl.Close()

	assert.Empty(t, h.sched.pending())
	assert.False(t, h.ctl.RetryPending())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", controller.Idle.String())
	assert.Equal(t, "awaiting response", controller.AwaitingResponse.String())
	assert.Equal(t, "retry scheduled", controller.RetryScheduled.String())
}
