// Package metrics defines the observability contracts of the ingestion
// pipeline. A MetricsSink records every decoded frame; optional recorder
// interfaces cover connection lifecycle, alert batches and status
// snapshots. Implementations such as the Prometheus and InfluxDB sinks live
// in infra/metrics and register themselves with the sink registry, so the
// configured list of sinks can be built with NewMetricsSink. Several sinks
// are combined automatically into a MultiSink.
package metrics
