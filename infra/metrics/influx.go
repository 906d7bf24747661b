package metrics

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/mineguard/core/metrics"
	"github.com/kilianp07/mineguard/infra/logger"
)

// InfluxConfig configures an InfluxSink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
	// FlushIntervalMs bounds how long points wait in the write buffer.
	FlushIntervalMs uint `json:"flush_interval_ms"`
}

// InfluxSink writes ingestion counters to InfluxDB. Points are buffered by
// the client's asynchronous write API so recording never blocks the
// connection handler on the network.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	log      logger.Logger
	once     sync.Once
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	opts := influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second})
	if cfg.FlushIntervalMs > 0 {
		opts = opts.SetFlushInterval(cfg.FlushIntervalMs)
	}
	client := influxdb2.NewClientWithOptions(base, cfg.Token, opts)
	s := &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
	errs := s.writeAPI.Errors()
	go func() {
		for err := range errs {
			s.log.Warnf("influx write: %v", err)
		}
	}()
	return s
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		_ = sink.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordFrame writes one ingest_frame point.
func (s *InfluxSink) RecordFrame(ev coremetrics.FrameEvent) error {
	p := write.NewPointWithMeasurement("ingest_frame").
		AddTag("outcome", string(ev.Outcome)).
		AddTag("session_id", ev.SessionID).
		AddField("bytes", ev.Bytes).
		AddField("telemetry", ev.Telemetry).
		AddField("alerts", ev.Alerts).
		AddField("latency_ms", float64(ev.Latency.Microseconds())/1000).
		SetTime(ev.Time)
	s.writeAPI.WritePoint(p)
	return nil
}

// RecordConnection writes one ingest_connection point.
func (s *InfluxSink) RecordConnection(ev coremetrics.ConnectionEvent) error {
	p := write.NewPointWithMeasurement("ingest_connection").
		AddTag("session_id", ev.SessionID).
		AddTag("state", string(ev.State)).
		AddField("remote_addr", ev.RemoteAddr).
		AddField("frames", ev.Frames).
		AddField("duration_s", ev.Duration.Seconds()).
		SetTime(ev.Time)
	if ev.Reason != "" {
		p.AddField("reason", ev.Reason)
	}
	s.writeAPI.WritePoint(p)
	return nil
}

// RecordStatus writes a fleet_status point.
func (s *InfluxSink) RecordStatus(ev coremetrics.StatusEvent) error {
	st := ev.Status
	p := write.NewPointWithMeasurement("fleet_status").
		AddField("producer_connected", st.SimulatorConnected).
		AddField("vehicles", st.TotalVehicles).
		AddField("vehicles_online", st.OnlineVehicles).
		AddField("active_alerts", st.ActiveAlerts).
		AddField("alerts_received", st.TotalAlertsReceived).
		SetTime(ev.Time)
	s.writeAPI.WritePoint(p)
	return nil
}

// Flush forces buffered points to be written.
func (s *InfluxSink) Flush() { s.writeAPI.Flush() }

// Close flushes pending points and releases the client.
func (s *InfluxSink) Close() error {
	s.once.Do(s.client.Close)
	return nil
}
