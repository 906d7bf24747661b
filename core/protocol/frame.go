package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// headerLength is the size of the length prefix.
const headerLength = 4

// MaxFrameLength is the largest accepted payload in bytes.
const MaxFrameLength = 1_000_000

var (
	// ErrStreamClosed reports that the stream ended before a full frame was read.
	ErrStreamClosed = errors.New("stream closed")
	// ErrFrameLength reports a length prefix outside [1, MaxFrameLength].
	ErrFrameLength = errors.New("invalid frame length")
)

// ReadFrame reads one length-prefixed frame from r and returns its payload.
// The body is never read when the announced length is out of bounds.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [headerLength]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, readError("header", err)
	}
	n := binary.BigEndian.Uint32(header[:])
	if n == 0 || n > MaxFrameLength {
		return nil, fmt.Errorf("%w: %d", ErrFrameLength, n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, readError("payload", err)
	}
	return payload, nil
}

// WriteFrame writes payload to w prefixed with its big-endian length.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) == 0 || len(payload) > MaxFrameLength {
		return fmt.Errorf("%w: %d", ErrFrameLength, len(payload))
	}
	buf := make([]byte, headerLength+len(payload))
	binary.BigEndian.PutUint32(buf[:headerLength], uint32(len(payload)))
	copy(buf[headerLength:], payload)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// readError maps end-of-input to ErrStreamClosed and keeps other I/O
// errors (deadlines, resets) inspectable by the caller.
func readError(part string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("read frame %s: %w: %w", part, ErrStreamClosed, err)
	}
	return fmt.Errorf("read frame %s: %w", part, err)
}
