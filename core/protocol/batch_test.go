package protocol

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/mineguard/core/model"
)

const sampleBatch = `{"telemetry":[{"vehicle_id":"HT-01","timestamp":1000,"vehicle_type":0,"cycle_state":2,` +
	`"position":{"latitude":1,"longitude":2,"altitude":3},` +
	`"telemetry":{"speed":20,"heading":90,"payload":50,"fuel_level":80,"engine_rpm":1500}}],"alerts":[]}`

func TestDecodeBatch(t *testing.T) {
	b, err := DecodeBatch([]byte(sampleBatch))
	require.NoError(t, err)
	want := []model.TelemetryRecord{{
		VehicleID:   "HT-01",
		Timestamp:   1000,
		VehicleType: model.VehicleHaulTruck,
		CycleState:  model.CycleHauling,
		Position:    model.Position{Latitude: 1, Longitude: 2, Altitude: 3},
		Telemetry:   model.Telemetry{Speed: 20, Heading: 90, Payload: 50, FuelLevel: 80, EngineRPM: 1500},
	}}
	if diff := cmp.Diff(want, b.Telemetry); diff != "" {
		t.Fatalf("telemetry mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, b.Alerts)
	assert.Equal(t, "", b.Type)
}

func TestDecodeBatchAlerts(t *testing.T) {
	payload := `{"type":"batch","alerts":[{"vehicle_id_1":"HT-101","vehicle_id_2":"LV-301","priority":4,` +
		`"alert_type":1,"time_to_impact":2.5,"distance":18.25,"timestamp":77}]}`
	b, err := DecodeBatch([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "batch", b.Type)
	assert.Empty(t, b.Telemetry)
	require.Len(t, b.Alerts, 1)
	assert.Equal(t, model.CollisionAlert{
		VehicleID1: "HT-101", VehicleID2: "LV-301", Priority: model.PriorityCritical,
		AlertType: model.AlertCrossing, TimeToImpact: 2.5, Distance: 18.25, Timestamp: 77,
	}, b.Alerts[0])
}

func TestDecodeBatchMissingFieldsAreEmpty(t *testing.T) {
	for _, payload := range []string{`{}`, `{"telemetry":null,"alerts":null}`, `{"type":"heartbeat"}`} {
		b, err := DecodeBatch([]byte(payload))
		require.NoError(t, err, payload)
		assert.NotNil(t, b.Telemetry)
		assert.NotNil(t, b.Alerts)
		assert.Empty(t, b.Telemetry)
		assert.Empty(t, b.Alerts)
	}
}

func TestDecodeBatchMalformed(t *testing.T) {
	cases := []string{
		`not json`,
		`{"telemetry":[`,
		`{"telemetry":{"vehicle_id":"x"}}`,
		`{"telemetry":[{"vehicle_id":42}]}`,
		`{"alerts":[{"priority":"high"}]}`,
		`{"telemetry":[{"timestamp":1.5}]}`,
		`[1,2,3]`,
		`null`,
		` null \n`,
	}
	for _, payload := range cases {
		_, err := DecodeBatch([]byte(payload))
		assert.ErrorIs(t, err, ErrMalformedBatch, payload)
	}
}

func TestEncodeDecodeBatch(t *testing.T) {
	in := Batch{
		Telemetry: []model.TelemetryRecord{{VehicleID: "LV-301", Timestamp: 5, VehicleType: model.VehicleLightVehicle,
			CycleState: model.CycleReturning, Telemetry: model.Telemetry{FuelLevel: 42.5}}},
		Alerts: []model.CollisionAlert{{VehicleID1: "a", VehicleID2: "b", Priority: model.PriorityLow}},
	}
	data, err := EncodeBatch(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"fuel_level":42.5`)
	assert.Contains(t, string(data), `"vehicle_id_1":"a"`)

	out, err := DecodeBatch(data)
	require.NoError(t, err)
	assert.Equal(t, BatchType, out.Type)
	assert.Equal(t, in.Telemetry, out.Telemetry)
	assert.Equal(t, in.Alerts, out.Alerts)
}
