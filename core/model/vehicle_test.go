package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumNames(t *testing.T) {
	cases := []struct {
		got, want string
	}{
		{VehicleHaulTruck.String(), "HaulTruck"},
		{VehicleLightVehicle.String(), "LightVehicle"},
		{VehicleType(9).String(), "Unknown"},
		{CycleHauling.String(), "HAULING"},
		{CycleState(-1).String(), "UNKNOWN"},
		{PriorityCritical.String(), "CRITICAL"},
		{AlertPriority(0).String(), "NONE"},
		{AlertPriority(7).String(), "NONE"},
		{AlertBlindSpot.String(), "BLIND_SPOT"},
		{AlertType(4).String(), "UNKNOWN"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.got)
	}
}

func TestVehicleFromRecord(t *testing.T) {
	rec := TelemetryRecord{
		VehicleID:   "HT-01",
		Timestamp:   1000,
		VehicleType: VehicleHaulTruck,
		CycleState:  CycleHauling,
		Position:    Position{Latitude: 1, Longitude: 2, Altitude: 3},
		Telemetry:   Telemetry{Speed: 20, Heading: 90, Payload: 50, FuelLevel: 80, EngineRPM: 1500},
	}
	v := VehicleFromRecord(rec)
	assert.Equal(t, "HT-01", v.ID)
	assert.Equal(t, int64(1000), v.LastUpdate)
	assert.True(t, v.Online)
	assert.Equal(t, rec.Telemetry, v.Telemetry)
}

func TestVehicleJSONIsCamelCase(t *testing.T) {
	v := Vehicle{ID: "EX-201", VehicleType: VehicleExcavator, CycleState: CycleLoading,
		Telemetry: Telemetry{FuelLevel: 55, EngineRPM: 900}, LastUpdate: 7, Online: true}
	data, err := json.Marshal(v)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "EX-201", out["id"])
	assert.Equal(t, float64(1), out["vehicleType"])
	assert.Equal(t, "Excavator", out["vehicleTypeName"])
	assert.Equal(t, "LOADING", out["cycleStateName"])
	assert.Equal(t, true, out["online"])
	tel := out["telemetry"].(map[string]any)
	assert.Equal(t, float64(55), tel["fuelLevel"])
	assert.Equal(t, float64(900), tel["engineRpm"])

	var back Vehicle
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, v, back)
}

func TestAlertJSONIsCamelCase(t *testing.T) {
	a := CollisionAlert{VehicleID1: "HT-101", VehicleID2: "LV-301", Priority: PriorityHigh,
		AlertType: AlertCrossing, TimeToImpact: 4.5, Distance: 12, Timestamp: 99}
	data, err := json.Marshal(a)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "HT-101", out["vehicleId1"])
	assert.Equal(t, "LV-301", out["vehicleId2"])
	assert.Equal(t, 4.5, out["timeToImpact"])
	assert.Equal(t, "HIGH", out["priorityName"])
	assert.Equal(t, "CROSSING", out["alertTypeName"])
}
