package model

// SystemStatus is a point-in-time summary derived from the fleet store.
type SystemStatus struct {
	SimulatorConnected     bool  `json:"simulatorConnected"`
	TotalVehicles          int   `json:"totalVehicles"`
	OnlineVehicles         int   `json:"onlineVehicles"`
	ActiveAlerts           int   `json:"activeAlerts"`
	TotalAlertsReceived    int   `json:"totalAlertsReceived"`
	UptimeSeconds          int64 `json:"uptimeSeconds"`
	LastTelemetryTimestamp int64 `json:"lastTelemetryTimestamp"`
}
