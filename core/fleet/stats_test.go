package fleet

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/mineguard/core/model"
)

func TestComputeStats(t *testing.T) {
	vehicles := []model.Vehicle{
		{ID: "HT-101", VehicleType: model.VehicleHaulTruck, CycleState: model.CycleHauling,
			Telemetry: model.Telemetry{Speed: 30, FuelLevel: 80, Payload: 200}},
		{ID: "HT-102", VehicleType: model.VehicleHaulTruck, CycleState: model.CycleReturning,
			Telemetry: model.Telemetry{Speed: 40, FuelLevel: 60}},
		{ID: "EX-201", VehicleType: model.VehicleExcavator, CycleState: model.CycleIdle,
			Telemetry: model.Telemetry{Speed: 0, FuelLevel: 40}},
	}
	active := []model.CollisionAlert{{Priority: model.PriorityHigh}, {Priority: model.PriorityHigh}, {Priority: model.PriorityLow}}

	st := ComputeStats(vehicles, active)
	assert.Equal(t, 3, st.Vehicles)
	assert.Equal(t, map[string]int{"HaulTruck": 2, "Excavator": 1}, st.ByType)
	assert.Equal(t, map[string]int{"HAULING": 1, "RETURNING": 1, "IDLE": 1}, st.ByCycleState)
	assert.InDelta(t, 70.0/3, st.MeanSpeed, 1e-9)
	assert.InDelta(t, 20.816659994661, st.SpeedStdDev, 1e-9)
	assert.Equal(t, 40.0, st.MaxSpeed)
	assert.InDelta(t, 60.0, st.MeanFuelLevel, 1e-9)
	assert.Equal(t, 40.0, st.MinFuelLevel)
	assert.Equal(t, 200.0, st.TotalPayload)
	assert.Equal(t, map[string]int{"HIGH": 2, "LOW": 1}, st.AlertsByPriority)
}

func TestComputeStatsSmallFleets(t *testing.T) {
	empty := ComputeStats(nil, nil)
	assert.Zero(t, empty.Vehicles)
	assert.Empty(t, empty.ByType)

	one := ComputeStats([]model.Vehicle{{Telemetry: model.Telemetry{Speed: 12, FuelLevel: 50}}}, nil)
	assert.Equal(t, 12.0, one.MeanSpeed)
	assert.Zero(t, one.SpeedStdDev)

	_, err := json.Marshal(one)
	require.NoError(t, err, "stats must stay JSON encodable")
}

func TestStoreStats(t *testing.T) {
	s := NewStore()
	s.ApplyTelemetry(record("HT-01", 1))
	s.ApplyAlerts([]model.CollisionAlert{alert("HT-01", "LV-01", model.PriorityCritical)})
	st := s.Stats()
	assert.Equal(t, 1, st.Vehicles)
	assert.Equal(t, 1, st.AlertsByPriority["CRITICAL"])
}
