// Package transport carries Helios protocol frames to and from the companion
// host over a websocket, reconnecting with backoff when the link drops.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/five82/helios/internal/protocol"
)

// Handler receives channel events. Methods are called from transport
// goroutines; implementations must hand them off to their own goroutine.
type Handler interface {
	OnSendSucceeded()
	OnSendFailed(reason protocol.Result)
	OnMessageReceived(fields protocol.Dict)
	OnMessageDropped(reason protocol.Result)
	OnConnectivityChanged(connected bool)
}

const (
	defaultHostAddr = "127.0.0.1:7488"
	// ChannelPath is the websocket endpoint served by the host.
	ChannelPath = "/channel"
	// ClientIDHeader carries the per-process client id on the upgrade request.
	ClientIDHeader = "X-Helios-Client"

	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
	readTimeout      = 90 * time.Second
	pingInterval     = 30 * time.Second
	maxFrameSize     = 8 * 1024

	baseBackoff = time.Second
	maxBackoff  = 30 * time.Second
)

// Client is a reconnecting websocket link to the host.
type Client struct {
	url      *url.URL
	clientID string
	dialer   *websocket.Dialer
	logger   *slog.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	handler Handler
	sending bool
}

// NewClient builds a client for the host at hostAddr (host:port or ws URL).
func NewClient(hostAddr string, logger *slog.Logger) (*Client, error) {
	u, err := parseChannelURL(hostAddr)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:      u,
		clientID: uuid.NewString(),
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
		logger: logger,
	}, nil
}

// URL returns the channel endpoint.
func (c *Client) URL() string {
	return c.url.String()
}

// Connected reports whether the link is currently up.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Run keeps the link up until ctx is cancelled, reporting events to h.
func (c *Client) Run(ctx context.Context, h Handler) error {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()

	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, err := c.dial(ctx)
		if err != nil {
			delay := calculateBackoff(failures, baseBackoff)
			failures++
			c.logger.Debug("host dial failed",
				slog.String("url", c.url.String()),
				slog.String("error", err.Error()),
				slog.Duration("retry_in", delay),
			)
			if !sleep(ctx, delay) {
				return ctx.Err()
			}
			continue
		}
		failures = 0

		c.setConn(conn)
		c.logger.Info("host link up", slog.String("url", c.url.String()))
		h.OnConnectivityChanged(true)

		err = c.readLoop(ctx, conn, h)

		c.setConn(nil)
		_ = conn.Close()
		h.OnConnectivityChanged(false)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Info("host link down", slog.String("error", errString(err)))
		if !sleep(ctx, baseBackoff) {
			return ctx.Err()
		}
	}
}

// Send submits fields to the host. A non-OK result means nothing was
// submitted; otherwise the delivery outcome is reported to the handler.
func (c *Client) Send(fields protocol.Dict) protocol.Result {
	c.mu.Lock()
	conn, h := c.conn, c.handler
	if conn == nil {
		c.mu.Unlock()
		return protocol.NotConnected
	}
	if c.sending {
		c.mu.Unlock()
		return protocol.Busy
	}
	data, err := json.Marshal(fields)
	if err != nil {
		c.mu.Unlock()
		return protocol.InvalidArgs
	}
	c.sending = true
	c.mu.Unlock()

	go func() {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		err := conn.WriteMessage(websocket.TextMessage, data)

		c.mu.Lock()
		c.sending = false
		c.mu.Unlock()

		if err != nil {
			c.logger.Debug("frame write failed", slog.String("error", err.Error()))
			h.OnSendFailed(writeResult(err))
			return
		}
		h.OnSendSucceeded()
	}()
	return protocol.OK
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set(ClientIDHeader, c.clientID)
	conn, resp, err := c.dialer.DialContext(ctx, c.url.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial host: status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial host: %w", err)
	}
	return conn, nil
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.sending = false
	c.mu.Unlock()
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, h Handler) error {
	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				// unblock ReadMessage
				_ = conn.Close()
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				h.OnMessageDropped(protocol.BufferOverflow)
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read frame: %w", err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		fields, err := decodeFrame(data)
		if err != nil {
			c.logger.Debug("dropping undecodable frame", slog.String("error", err.Error()))
			h.OnMessageDropped(protocol.InternalError)
			continue
		}
		h.OnMessageReceived(fields)
	}
}

func decodeFrame(data []byte) (protocol.Dict, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields protocol.Dict
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("decode frame: not an object")
	}
	return fields, nil
}

func writeResult(err error) protocol.Result {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		return protocol.SendTimeout
	case errors.Is(err, websocket.ErrCloseSent), errors.Is(err, net.ErrClosed):
		return protocol.Closed
	default:
		return protocol.SendRejected
	}
}

// calculateBackoff doubles base per consecutive failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func parseChannelURL(hostAddr string) (*url.URL, error) {
	trimmed := strings.TrimSpace(hostAddr)
	if trimmed == "" {
		trimmed = defaultHostAddr
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "ws://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse host_addr %q: %w", hostAddr, err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("parse host_addr %q: unsupported scheme %q", hostAddr, u.Scheme)
	}
	u.Path = ChannelPath
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
