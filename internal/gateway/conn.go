// ABOUTME: Connection server: accept, single read, route, write, close
// ABOUTME: Sequential by default, optionally one goroutine per connection

package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2389/coven-relay/internal/relay"
)

// Handler turns one raw request into reply bytes. A nil reply writes nothing.
type Handler interface {
	Handle(ctx context.Context, conn relay.ConnInfo, raw []byte) []byte
}

// ConnServerParams configures a ConnServer.
type ConnServerParams struct {
	Handler     Handler
	BufferSize  int
	Concurrent  bool
	ReadTimeout time.Duration
	Logger      *slog.Logger
}

// ConnServer serves the relay protocol on a listener.
type ConnServer struct {
	handler     Handler
	bufferSize  int
	concurrent  bool
	readTimeout time.Duration
	logger      *slog.Logger

	wg sync.WaitGroup
}

// NewConnServer creates a ConnServer.
func NewConnServer(p ConnServerParams) *ConnServer {
	if p.BufferSize <= 1 {
		p.BufferSize = 8192
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	return &ConnServer{
		handler:     p.Handler,
		bufferSize:  p.BufferSize,
		concurrent:  p.Concurrent,
		readTimeout: p.ReadTimeout,
		logger:      p.Logger,
	}
}

// Serve accepts connections on ln until ctx is canceled or ln is closed.
// Returns nil on shutdown. Canceling ctx also expires the deadline of open
// connections, and in concurrent mode Serve waits for them before returning.
func (s *ConnServer) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer s.wg.Wait()

	s.logger.Info("relay listening", "addr", ln.Addr().String(), "concurrent", s.concurrent)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			s.logger.Warn("accept failed", "error", err)
			continue
		}

		if s.concurrent {
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.handleConn(ctx, conn)
			}()
			continue
		}
		s.handleConn(ctx, conn)
	}
}

// handleConn runs one request/reply exchange and closes conn.
func (s *ConnServer) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	info := relay.ConnInfo{
		ID:         uuid.New().String(),
		RemoteAddr: conn.RemoteAddr().String(),
	}
	logger := s.logger.With("conn_id", info.ID, "remote", info.RemoteAddr)

	if s.readTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	}
	// shutdown unblocks a peer that connected but never sent anything
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	// one read only; anything arriving later is not part of the request
	buf := make([]byte, s.bufferSize-1)
	n, err := conn.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		logger.Debug("read failed", "error", err)
		return
	}

	reply := s.handler.Handle(ctx, info, buf[:n])
	if len(reply) == 0 {
		logger.Debug("closing without reply")
		return
	}

	if _, err := conn.Write(reply); err != nil {
		logger.Debug("write failed", "error", err)
	}
}
