package fleet

import (
	"time"

	"github.com/kilianp07/mineguard/core/model"
)

// Snapshot is a consistent view of the store contents taken under its lock.
type Snapshot struct {
	Connected              bool
	Vehicles               []model.Vehicle
	ActiveAlerts           int
	AlertsReceived         int
	LastTelemetryTimestamp int64
}

// Aggregate derives the status projection from a snapshot. It has no side
// effects and caches nothing.
func Aggregate(snap Snapshot, start, now time.Time) model.SystemStatus {
	online := 0
	for _, v := range snap.Vehicles {
		if v.Online {
			online++
		}
	}
	uptime := now.Sub(start)
	if uptime < 0 {
		uptime = 0
	}
	return model.SystemStatus{
		SimulatorConnected:     snap.Connected,
		TotalVehicles:          len(snap.Vehicles),
		OnlineVehicles:         online,
		ActiveAlerts:           snap.ActiveAlerts,
		TotalAlertsReceived:    snap.AlertsReceived,
		UptimeSeconds:          int64(uptime / time.Second),
		LastTelemetryTimestamp: snap.LastTelemetryTimestamp,
	}
}
