package ingest

import (
	"bufio"
	"context"
	"errors"
	"net"
	"time"

	coremetrics "github.com/kilianp07/mineguard/core/metrics"
	"github.com/kilianp07/mineguard/core/protocol"
)

// Close reasons reported in logs and connection events.
const (
	reasonEOF               = "eof"
	reasonProtocolViolation = "protocol_violation"
	reasonIdleTimeout       = "idle_timeout"
	reasonIOError           = "io_error"
	reasonShutdown          = "shutdown"
)

const readBufferSize = 64 << 10

// handle runs the read loop of one producer connection. The store is
// marked connected for its whole lifetime; on return the socket is closed
// and the producer slot released.
func (s *Server) handle(ctx context.Context, id string, conn net.Conn) {
	start := time.Now()
	remote := conn.RemoteAddr().String()
	frames := 0
	reason := reasonEOF

	s.log.Infof("producer connected session=%s remote=%s", id, remote)
	_ = s.recordConnection(coremetrics.ConnectionEvent{
		SessionID: id, RemoteAddr: remote, State: coremetrics.ConnectionOpened, Time: start,
	})
	s.store.SetConnected(true)

	defer func() {
		_ = conn.Close()
		s.log.Infof("producer disconnected session=%s reason=%s frames=%d", id, reason, frames)
		_ = s.recordConnection(coremetrics.ConnectionEvent{
			SessionID:  id,
			RemoteAddr: remote,
			State:      coremetrics.ConnectionClosed,
			Duration:   time.Since(start),
			Frames:     frames,
			Reason:     reason,
			Time:       time.Now(),
		})
		s.release(id)
	}()

	r := bufio.NewReaderSize(conn, readBufferSize)
	for {
		if s.idleTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
		}
		payload, err := protocol.ReadFrame(r)
		if err != nil {
			reason = s.closeReason(ctx, id, err)
			return
		}
		frames++
		s.apply(id, payload)
	}
}

// apply decodes one frame and applies it as a single batch. A batch that
// fails to decode is dropped and the connection keeps reading.
func (s *Server) apply(id string, payload []byte) {
	t0 := time.Now()
	batch, err := protocol.DecodeBatch(payload)
	if err != nil {
		s.log.Warnf("session=%s dropping %d byte frame: %v", id, len(payload), err)
		_ = s.sink.RecordFrame(coremetrics.FrameEvent{
			SessionID: id, Bytes: len(payload), Outcome: coremetrics.OutcomeDecodeError, Time: t0,
		})
		return
	}
	s.store.ApplyBatch(batch.Telemetry, batch.Alerts)
	_ = s.sink.RecordFrame(coremetrics.FrameEvent{
		SessionID: id,
		Bytes:     len(payload),
		Telemetry: len(batch.Telemetry),
		Alerts:    len(batch.Alerts),
		Outcome:   coremetrics.OutcomeApplied,
		Latency:   time.Since(t0),
		Time:      t0,
	})
}

func (s *Server) closeReason(ctx context.Context, id string, err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, protocol.ErrFrameLength):
		s.log.Warnf("session=%s protocol violation, closing: %v", id, err)
		_ = s.sink.RecordFrame(coremetrics.FrameEvent{
			SessionID: id, Outcome: coremetrics.OutcomeProtocolViolation, Time: time.Now(),
		})
		return reasonProtocolViolation
	case ctx.Err() != nil:
		return reasonShutdown
	case errors.Is(err, protocol.ErrStreamClosed):
		return reasonEOF
	case errors.As(err, &netErr) && netErr.Timeout():
		s.log.Infof("session=%s idle for %s, closing", id, s.idleTimeout)
		return reasonIdleTimeout
	default:
		s.log.Infof("session=%s read failed: %v", id, err)
		return reasonIOError
	}
}
