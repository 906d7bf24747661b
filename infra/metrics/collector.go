package metrics

import (
	"context"

	"github.com/kilianp07/mineguard/core/fleet"
	coremetrics "github.com/kilianp07/mineguard/core/metrics"
	"github.com/kilianp07/mineguard/internal/eventbus"
)

// StartEventCollector subscribes to the fleet event bus and forwards alert
// batches and status snapshots to sink recorders that support them. It
// stops when the context is canceled or the bus is closed; the returned
// channel is closed once the collector has exited.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[fleet.Event], sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	alerts, _ := sink.(coremetrics.AlertRecorder)
	status, _ := sink.(coremetrics.StatusRecorder)
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				e, isBatch := ev.(fleet.BatchApplied)
				if !isBatch {
					continue
				}
				if alerts != nil && e.Alerts != nil {
					_ = alerts.RecordAlerts(coremetrics.AlertEvent{Alerts: e.Alerts, Time: e.At})
				}
				if status != nil {
					_ = status.RecordStatus(coremetrics.StatusEvent{Status: e.Status, Time: e.At})
				}
			}
		}
	}()
	return done
}
