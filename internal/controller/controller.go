package controller

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/five82/helios/internal/daytimes"
	"github.com/five82/helios/internal/protocol"
)

// Retry delays.
const (
	OutboxRetryDelay  = 2000 * time.Millisecond
	SendRetryDelay    = 1200 * time.Millisecond
	ConnectFetchDelay = 400 * time.Millisecond
)

// Status texts shown through the Sink.
const (
	StatusPending         = "pending"
	StatusConnecting      = "connecting"
	StatusConnected       = "connected, fetching"
	StatusWaitingForHost  = "waiting for host"
	statusOutboxFormat    = "outbox: %s"
	statusSendFailFormat  = "send failed: %s"
	statusHostErrorFormat = "error: %s"
	statusDroppedFormat   = "dropped: %s"
)

// Channel submits outbound frames to the host. Send returns the
// pre-submission result; the delivery result arrives later through
// OnSendSucceeded or OnSendFailed.
type Channel interface {
	Send(fields protocol.Dict) protocol.Result
}

// Sink presents status text and day records. A record with Valid == false is
// rendered as pending.
type Sink interface {
	ShowStatus(text string)
	ShowDay(rec daytimes.DayRecord)
}

// Timer is a pending single-shot callback.
type Timer interface {
	Stop() bool
}

// Scheduler creates single-shot timers whose callbacks run on the same
// goroutine as the controller.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// State is the coarse protocol state.
type State int

const (
	Idle State = iota
	AwaitingResponse
	RetryScheduled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingResponse:
		return "awaiting response"
	case RetryScheduled:
		return "retry scheduled"
	default:
		return "unknown"
	}
}

// Controller keeps the three-day cache in sync with the host and decides what
// the sink shows. It is not safe for concurrent use: every method must run on
// the goroutine that runs timer callbacks.
type Controller struct {
	channel   Channel
	sink      Sink
	scheduler Scheduler
	logger    *slog.Logger

	cache    *daytimes.Cache
	selected int32
	state    State
	retry    Timer
}

// New creates a controller with an empty cache and today selected.
func New(channel Channel, sink Sink, scheduler Scheduler, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		channel:   channel,
		sink:      sink,
		scheduler: scheduler,
		logger:    logger,
		cache:     daytimes.NewCache(),
	}
}

// Selected returns the selected day offset.
func (c *Controller) Selected() int32 {
	return c.selected
}

// State returns the current protocol state.
func (c *Controller) State() State {
	return c.state
}

// RetryPending reports whether a retry timer is outstanding.
func (c *Controller) RetryPending() bool {
	return c.retry != nil
}

// Cache exposes the day cache for inspection.
func (c *Controller) Cache() *daytimes.Cache {
	return c.cache
}

// RequestTimes asks the host for the bundle centered on the selected day.
func (c *Controller) RequestTimes() {
	offset := c.selected
	if r := c.channel.Send(protocol.Request(offset)); r != protocol.OK {
		c.logger.Warn("time request not submitted",
			slog.Int("offset", int(offset)),
			slog.String("reason", r.String()),
		)
		c.sink.ShowStatus(fmt.Sprintf(statusOutboxFormat, r))
		c.scheduleRetry(OutboxRetryDelay)
		return
	}
	c.logger.Debug("time request submitted", slog.Int("offset", int(offset)))
	if c.state != RetryScheduled {
		c.state = AwaitingResponse
	}

	if _, ok := c.cache.Lookup(offset); !ok {
		c.sink.ShowStatus(StatusPending)
	}
}

// OnSendFailed handles a submitted request the transport could not deliver.
func (c *Controller) OnSendFailed(reason protocol.Result) {
	c.logger.Warn("time request failed", slog.String("reason", reason.String()))
	c.sink.ShowStatus(fmt.Sprintf(statusSendFailFormat, reason))
	c.scheduleRetry(SendRetryDelay)
}

// OnSendSucceeded acknowledges delivery of a request.
func (c *Controller) OnSendSucceeded() {
	c.logger.Debug("time request delivered")
}

// OnMessageReceived merges an inbound frame.
func (c *Controller) OnMessageReceived(fields protocol.Dict) {
	switch msg := protocol.Decode(fields).(type) {
	case protocol.Handshake:
		c.logger.Info("host handshake")
		c.cache.Clear()
		c.sink.ShowStatus(StatusConnected)
		c.RequestTimes()

	case protocol.HostError:
		c.logger.Warn("host reported error", slog.String("error", msg.Text))
		c.settle()
		c.sink.ShowStatus(fmt.Sprintf(statusHostErrorFormat, msg.Text))

	case protocol.Bundle:
		c.logger.Debug("bundle received",
			slog.Int("center", int(msg.Center)),
			slog.Int("selected", int(c.selected)),
		)
		c.settle()
		c.cache.IngestBundle(msg.Center, msg.Days)
		if rec, ok := c.cache.Lookup(c.selected); ok && rec.Valid {
			c.sink.ShowDay(rec)
		}

	case protocol.Legacy:
		c.logger.Debug("legacy payload received", slog.Int("selected", int(c.selected)))
		c.settle()
		c.sink.ShowDay(daytimes.LegacyRecord(c.selected, msg.Fields))

	case protocol.Unrecognized:
		c.logger.Debug("ignoring unrecognized payload", slog.Int("keys", len(fields)))
	}
}

// OnMessageDropped reports an inbound frame the transport lost.
func (c *Controller) OnMessageDropped(reason protocol.Result) {
	c.logger.Warn("inbound message dropped", slog.String("reason", reason.String()))
	c.sink.ShowStatus(fmt.Sprintf(statusDroppedFormat, reason))
}

// OnConnectivityChanged reacts to the host link coming up or going down. A
// disconnect cancels any pending retry; reconnect schedules one fetch after
// the link settles.
func (c *Controller) OnConnectivityChanged(connected bool) {
	c.logger.Info("host connectivity changed", slog.Bool("connected", connected))
	if connected {
		c.sink.ShowStatus(StatusConnecting)
		c.scheduleRetry(ConnectFetchDelay)
		return
	}
	c.sink.ShowStatus(StatusWaitingForHost)
	c.cancelRetry()
	c.state = Idle
}

// NavigateTo selects offset, shows it from cache when possible and always
// requests a fresh bundle around it.
func (c *Controller) NavigateTo(offset int32) {
	c.selected = offset
	if rec, ok := c.cache.Lookup(offset); ok && rec.Valid {
		c.sink.ShowDay(rec)
	} else {
		c.sink.ShowStatus(StatusPending)
	}
	c.RequestTimes()
}

// Step moves the selection by delta days, stopping at the int32 limits.
func (c *Controller) Step(delta int32) {
	next := int64(c.selected) + int64(delta)
	next = max(math.MinInt32, min(math.MaxInt32, next))
	c.NavigateTo(int32(next))
}

// Today selects offset 0.
func (c *Controller) Today() {
	c.NavigateTo(0)
}

// Close cancels the pending retry. It is safe to call more than once.
func (c *Controller) Close() {
	c.cancelRetry()
	c.state = Idle
}

func (c *Controller) scheduleRetry(delay time.Duration) {
	c.cancelRetry()
	var timer Timer
	timer = c.scheduler.AfterFunc(delay, func() {
		if c.retry != timer {
			return
		}
		c.retry = nil
		c.state = Idle
		c.logger.Debug("retry timer fired")
		c.RequestTimes()
	})
	c.retry = timer
	c.state = RetryScheduled
	c.logger.Debug("retry scheduled", slog.Duration("delay", delay))
}

func (c *Controller) cancelRetry() {
	if c.retry == nil {
		return
	}
	c.retry.Stop()
	c.retry = nil
}

// settle marks the outstanding request as answered.
func (c *Controller) settle() {
	if c.state == AwaitingResponse {
		c.state = Idle
	}
}
