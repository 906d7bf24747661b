package metrics

import "errors"

// MultiSink fans events out to multiple sinks. Every sink is called even
// when an earlier one fails; the errors are joined.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordFrame forwards the frame event to all sinks.
func (m *MultiSink) RecordFrame(ev FrameEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordFrame(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordConnection forwards connection events to sinks supporting them.
func (m *MultiSink) RecordConnection(ev ConnectionEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(ConnectionRecorder); ok {
			if err := rec.RecordConnection(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordAlerts forwards alert batches to sinks supporting them.
func (m *MultiSink) RecordAlerts(ev AlertEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(AlertRecorder); ok {
			if err := rec.RecordAlerts(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordStatus forwards status snapshots to sinks supporting them.
func (m *MultiSink) RecordStatus(ev StatusEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(StatusRecorder); ok {
			if err := rec.RecordStatus(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
