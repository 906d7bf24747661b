package metrics

import (
	"fmt"

	"github.com/kilianp07/mineguard/core/factory"
)

var sinkRegistry = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink adds a metrics sink factory identified by name.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// SinkTypes lists the registered sink types.
func SinkTypes() []string { return sinkRegistry.Types() }

// NewMetricsSink builds one sink per entry. No entry yields a NopSink, a
// single entry is returned as is and several are fanned out through a
// MultiSink. If an entry fails, the sinks built so far are closed.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	switch len(cfgs) {
	case 0:
		return NopSink{}, nil
	case 1:
		return sinkRegistry.Create(cfgs[0])
	}
	built := NewMultiSink()
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			_ = built.Close()
			return nil, fmt.Errorf("sink %d (%s): %w", i, c.Type, err)
		}
		built.Sinks = append(built.Sinks, s)
	}
	return built, nil
}
