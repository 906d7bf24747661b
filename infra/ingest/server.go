package ingest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/mineguard/core/fleet"
	coremetrics "github.com/kilianp07/mineguard/core/metrics"
	"github.com/kilianp07/mineguard/infra/logger"
)

// acceptBackoff throttles the accept loop after a transient error.
const acceptBackoff = 50 * time.Millisecond

// Server is the producer acceptor.
type Server struct {
	addr        string
	store       fleet.Writer
	sink        coremetrics.MetricsSink
	log         logger.Logger
	idleTimeout time.Duration

	mu       sync.Mutex
	ln       net.Listener
	conns    map[string]net.Conn
	producer string
	wg       sync.WaitGroup

	rejected atomic.Uint64
}

// Option customises a Server.
type Option func(*Server)

// WithLogger replaces the component logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithMetrics records frame and connection events to sink.
func WithMetrics(sink coremetrics.MetricsSink) Option {
	return func(s *Server) { s.sink = sink }
}

// WithIdleTimeout closes a producer connection that sends nothing for d.
// Zero waits forever.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Server) { s.idleTimeout = d }
}

// NewServer returns a server that will listen on addr and apply batches to
// store.
func NewServer(addr string, store fleet.Writer, opts ...Option) *Server {
	s := &Server{
		addr:  addr,
		store: store,
		sink:  coremetrics.NopSink{},
		log:   logger.New("ingest"),
		conns: make(map[string]net.Conn),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Serve listens on the configured address and serves until ctx is
// canceled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener accepts producer connections on ln until ctx is canceled.
// On return the listener and every live connection are closed and all
// handlers have exited.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = ln.Close()
			s.closeAll()
		case <-stop:
		}
	}()

	s.log.Infof("listening for producer on %s", ln.Addr())
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.log.Errorf("accept: %v", err)
			select {
			case <-time.After(acceptBackoff):
			case <-ctx.Done():
			}
			continue
		}
		s.admit(ctx, conn)
	}

	_ = ln.Close()
	s.closeAll()
	s.wg.Wait()
	s.log.Infof("ingest server stopped")
	return nil
}

// Addr returns the bound address, or nil before the server is listening.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Rejected returns how many connections were turned away because a
// producer was already connected.
func (s *Server) Rejected() uint64 { return s.rejected.Load() }

// admit hands conn to a handler goroutine unless another producer holds
// the slot.
func (s *Server) admit(ctx context.Context, conn net.Conn) {
	id := uuid.NewString()
	s.mu.Lock()
	if s.producer != "" {
		holder := s.producer
		s.mu.Unlock()
		s.reject(conn, id, holder)
		return
	}
	s.producer = id
	s.conns[id] = conn
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.handle(ctx, id, conn)
	}()
}

func (s *Server) reject(conn net.Conn, id, holder string) {
	s.rejected.Add(1)
	remote := conn.RemoteAddr().String()
	s.log.Warnf("rejecting connection %s from %s: producer session %s already active", id, remote, holder)
	_ = conn.Close()
	_ = s.recordConnection(coremetrics.ConnectionEvent{
		SessionID:  id,
		RemoteAddr: remote,
		State:      coremetrics.ConnectionRejected,
		Reason:     "producer already connected",
		Time:       time.Now(),
	})
}

// release frees the producer slot. The connected flag is cleared under the
// same lock so a producer admitted next cannot have its flag overwritten.
func (s *Server) release(id string) {
	s.mu.Lock()
	s.store.SetConnected(false)
	delete(s.conns, id)
	if s.producer == id {
		s.producer = ""
	}
	s.mu.Unlock()
}

// closeAll unblocks every pending read.
func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		_ = c.Close()
	}
}

func (s *Server) recordConnection(ev coremetrics.ConnectionEvent) error {
	if r, ok := s.sink.(coremetrics.ConnectionRecorder); ok {
		return r.RecordConnection(ev)
	}
	return nil
}
