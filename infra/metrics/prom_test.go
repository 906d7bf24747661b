package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/mineguard/core/metrics"
	"github.com/kilianp07/mineguard/core/model"
)

func TestPromSink_RecordFrame(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordFrame(coremetrics.FrameEvent{
		Bytes: 120, Telemetry: 5, Alerts: 2, Outcome: coremetrics.OutcomeApplied, Latency: time.Millisecond,
	}))
	require.NoError(t, sink.RecordFrame(coremetrics.FrameEvent{Bytes: 30, Outcome: coremetrics.OutcomeDecodeError}))
	require.NoError(t, sink.RecordFrame(coremetrics.FrameEvent{Outcome: coremetrics.OutcomeProtocolViolation}))

	expected := `
# HELP mineguard_ingest_frames_total Frames received from the producer by outcome
# TYPE mineguard_ingest_frames_total counter
mineguard_ingest_frames_total{outcome="applied"} 1
mineguard_ingest_frames_total{outcome="decode_error"} 1
mineguard_ingest_frames_total{outcome="protocol_violation"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(sink.frames, strings.NewReader(expected)))
	assert.Equal(t, 150.0, testutil.ToFloat64(sink.frameBytes))
	assert.Equal(t, 5.0, testutil.ToFloat64(sink.records.WithLabelValues("telemetry")))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.records.WithLabelValues("alert")))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.applyTime))
}

func TestPromSink_ConnectionsAndAlerts(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	for _, st := range []coremetrics.ConnectionState{coremetrics.ConnectionOpened, coremetrics.ConnectionRejected, coremetrics.ConnectionClosed} {
		require.NoError(t, sink.RecordConnection(coremetrics.ConnectionEvent{State: st}))
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.connections.WithLabelValues("rejected")))

	require.NoError(t, sink.RecordAlerts(coremetrics.AlertEvent{Alerts: []model.CollisionAlert{
		{Priority: model.PriorityCritical, AlertType: model.AlertApproach},
		{Priority: model.PriorityCritical, AlertType: model.AlertApproach},
		{Priority: model.PriorityLow, AlertType: model.AlertTailgating},
	}}))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.alerts.WithLabelValues("CRITICAL", "APPROACH")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.alerts.WithLabelValues("LOW", "TAILGATING")))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, second.RecordFrame(coremetrics.FrameEvent{Outcome: coremetrics.OutcomeApplied}))
	assert.Equal(t, 1.0, testutil.ToFloat64(first.frames.WithLabelValues("applied")))
}
