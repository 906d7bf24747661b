package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/mineguard/core/metrics"
)

const namespace = "mineguard"

// PromSink records ingestion events in Prometheus metrics.
type PromSink struct {
	frames      *prometheus.CounterVec
	frameBytes  prometheus.Counter
	records     *prometheus.CounterVec
	applyTime   prometheus.Histogram
	connections *prometheus.CounterVec
	alerts      *prometheus.CounterVec
}

// NewPromSink registers ingestion metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Metrics
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_frames_total",
			Help:      "Frames received from the producer by outcome",
		}, []string{"outcome"}),
		frameBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_frame_bytes_total",
			Help:      "Frame body bytes received from the producer",
		}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_records_total",
			Help:      "Telemetry records and alerts applied to the store",
		}, []string{"kind"}),
		applyTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_frame_apply_seconds",
			Help:      "Time spent decoding and applying one frame",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
		connections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_connections_total",
			Help:      "Producer connection lifecycle events",
		}, []string{"state"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collision_alerts_total",
			Help:      "Collision alerts received by priority and type",
		}, []string{"priority", "type"}),
	}

	var err error
	if s.frames, err = register(reg, s.frames); err != nil {
		return nil, err
	}
	if s.frameBytes, err = register(reg, s.frameBytes); err != nil {
		return nil, err
	}
	if s.records, err = register(reg, s.records); err != nil {
		return nil, err
	}
	if s.applyTime, err = register(reg, s.applyTime); err != nil {
		return nil, err
	}
	if s.connections, err = register(reg, s.connections); err != nil {
		return nil, err
	}
	if s.alerts, err = register(reg, s.alerts); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordFrame counts the frame and, when applied, its records and latency.
func (s *PromSink) RecordFrame(ev coremetrics.FrameEvent) error {
	s.frames.WithLabelValues(string(ev.Outcome)).Inc()
	s.frameBytes.Add(float64(ev.Bytes))
	if ev.Outcome != coremetrics.OutcomeApplied {
		return nil
	}
	s.records.WithLabelValues("telemetry").Add(float64(ev.Telemetry))
	s.records.WithLabelValues("alert").Add(float64(ev.Alerts))
	s.applyTime.Observe(ev.Latency.Seconds())
	return nil
}

// RecordConnection counts connection lifecycle events.
func (s *PromSink) RecordConnection(ev coremetrics.ConnectionEvent) error {
	s.connections.WithLabelValues(string(ev.State)).Inc()
	return nil
}

// RecordAlerts counts alerts by priority and type.
func (s *PromSink) RecordAlerts(ev coremetrics.AlertEvent) error {
	for _, a := range ev.Alerts {
		s.alerts.WithLabelValues(a.Priority.String(), a.AlertType.String()).Inc()
	}
	return nil
}
