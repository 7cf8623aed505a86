package host

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/five82/helios/internal/daytimes"
	"github.com/five82/helios/internal/protocol"
	"github.com/five82/helios/internal/transport"
)

// Options configure a Server.
type Options struct {
	Almanac  *Almanac
	Location *time.Location   // nil uses time.Local
	Now      func() time.Time // nil uses time.Now
	Legacy   bool             // answer with single-day payloads
	Logger   *slog.Logger
}

// Server answers time requests on the channel endpoint.
type Server struct {
	almanac  *Almanac
	location *time.Location
	now      func() time.Time
	legacy   bool
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewServer builds a Server from opts.
func NewServer(opts Options) *Server {
	s := &Server{
		almanac:  opts.Almanac,
		location: opts.Location,
		now:      opts.Now,
		legacy:   opts.Legacy,
		logger:   opts.Logger,
	}
	if s.almanac == nil {
		s.almanac = &Almanac{}
	}
	if s.location == nil {
		s.location = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// ServeHTTP upgrades requests on the channel path.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != transport.ChannelPath {
		http.NotFound(w, r)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	logger := s.logger.With(
		slog.String("session", uuid.NewString()),
		slog.String("client", r.Header.Get(transport.ClientIDHeader)),
	)
	logger.Info("client connected", slog.String("remote", r.RemoteAddr))
	s.serveConn(r.Context(), conn, logger)
	logger.Info("client disconnected")
}

func (s *Server) serveConn(ctx context.Context, conn *websocket.Conn, logger *slog.Logger) {
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	if err := conn.WriteJSON(protocol.HandshakeDict()); err != nil {
		logger.Warn("handshake write failed", slog.String("error", err.Error()))
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var fields protocol.Dict
		if err := dec.Decode(&fields); err != nil {
			logger.Debug("ignoring undecodable frame", slog.String("error", err.Error()))
			continue
		}
		offset, ok := protocol.ParseRequest(fields)
		if !ok {
			logger.Debug("ignoring frame without request marker")
			continue
		}
		logger.Debug("time request", slog.Int("offset", int(offset)))
		if err := conn.WriteJSON(s.Respond(offset)); err != nil {
			logger.Warn("response write failed", slog.String("error", err.Error()))
			return
		}
	}
}

// Respond builds the reply to a request for offset: a bundle centered on it,
// a single day in legacy mode, or an error when the almanac has nothing.
func (s *Server) Respond(offset int32) protocol.Dict {
	today := s.now().In(s.location)
	day := func(delta int32) (daytimes.Fields, bool) {
		return s.almanac.Fields(today.AddDate(0, 0, int(offset)+int(delta)))
	}

	if s.legacy {
		f, ok := day(0)
		if !ok {
			return protocol.ErrorDict(ErrNoAlmanacData.Error())
		}
		return protocol.LegacyDict(f)
	}

	var days [3]daytimes.Fields
	known := 0
	for slot := range days {
		f, ok := day(int32(slot) - 1)
		if ok {
			known++
		}
		days[slot] = f
	}
	if known == 0 {
		return protocol.ErrorDict(ErrNoAlmanacData.Error())
	}
	return protocol.BundleDict(offset, days)
}

// Serve runs an HTTP server for s on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, s *Server) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 15 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		s.logger.Info("starting host", slog.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down host")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("host shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("host server error: %w", err)
	}
}
