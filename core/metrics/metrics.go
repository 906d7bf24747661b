package metrics

import (
	"time"

	"github.com/kilianp07/mineguard/core/model"
)

// Outcome classifies what happened to a received frame.
type Outcome string

const (
	// OutcomeApplied means the frame decoded and was applied to the store.
	OutcomeApplied Outcome = "applied"
	// OutcomeDecodeError means the body was not a valid batch and was skipped.
	OutcomeDecodeError Outcome = "decode_error"
	// OutcomeProtocolViolation means the length prefix was out of bounds and
	// the connection was closed.
	OutcomeProtocolViolation Outcome = "protocol_violation"
)

// FrameEvent describes one length-prefixed frame read from the producer.
type FrameEvent struct {
	SessionID string
	Bytes     int
	Telemetry int
	Alerts    int
	Outcome   Outcome
	// Latency covers decoding and applying the frame.
	Latency time.Duration
	Time    time.Time
}

// MetricsSink records ingestion activity for observability purposes.
type MetricsSink interface {
	RecordFrame(ev FrameEvent) error
}

// ConnectionState is a lifecycle step of a producer connection.
type ConnectionState string

const (
	ConnectionOpened   ConnectionState = "opened"
	ConnectionClosed   ConnectionState = "closed"
	ConnectionRejected ConnectionState = "rejected"
)

// ConnectionEvent captures a producer connection lifecycle change.
type ConnectionEvent struct {
	SessionID  string
	RemoteAddr string
	State      ConnectionState
	// Duration and Frames are set when State is ConnectionClosed.
	Duration time.Duration
	Frames   int
	Reason   string
	Time     time.Time
}

// ConnectionRecorder records connection lifecycle events.
type ConnectionRecorder interface {
	RecordConnection(ev ConnectionEvent) error
}

// AlertEvent is the active alert set installed by one batch.
type AlertEvent struct {
	Alerts []model.CollisionAlert
	Time   time.Time
}

// AlertRecorder records alert batches.
type AlertRecorder interface {
	RecordAlerts(ev AlertEvent) error
}

// StatusEvent is a status projection observed after a batch.
type StatusEvent struct {
	Status model.SystemStatus
	Time   time.Time
}

// StatusRecorder records status snapshots.
type StatusRecorder interface {
	RecordStatus(ev StatusEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordFrame(FrameEvent) error           { return nil }
func (NopSink) RecordConnection(ConnectionEvent) error { return nil }
func (NopSink) RecordAlerts(AlertEvent) error          { return nil }
func (NopSink) RecordStatus(StatusEvent) error         { return nil }
