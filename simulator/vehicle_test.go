package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/mineguard/core/model"
)

func TestVehicleAcceleratesToTarget(t *testing.T) {
	v := NewVehicle("LV-1", model.VehicleLightVehicle, origin)
	v.SetHeading(90)
	v.SetTargetSpeed(36)

	v.Update(1)
	assert.InDelta(t, 7.2, v.Telemetry.Speed, 1e-9)
	for i := 0; i < 10; i++ {
		v.Update(1)
	}
	assert.InDelta(t, 36, v.Telemetry.Speed, 1e-9)
	assert.InDelta(t, idleRPM+36.0/60*rpmRange, v.Telemetry.EngineRPM, 1e-9)
	assert.Greater(t, v.Position.Longitude, origin.Longitude)
	assert.Less(t, v.Telemetry.FuelLevel, 100.0)
}

func TestVehicleBrakes(t *testing.T) {
	v := NewVehicle("LV-1", model.VehicleLightVehicle, origin)
	v.Telemetry.Speed = 36
	v.SetTargetSpeed(0)
	for _, want := range []float64{6 * 3.6, 2 * 3.6, 0} {
		v.Update(1)
		assert.InDelta(t, want, v.Telemetry.Speed, 1e-9)
	}
}

func TestVehicleTargetSpeedClamped(t *testing.T) {
	v := NewVehicle("EX-1", model.VehicleExcavator, origin)
	v.SetTargetSpeed(100)
	assert.Equal(t, 5.0, v.TargetSpeed())
	v.SetTargetSpeed(-3)
	assert.Zero(t, v.TargetSpeed())
}

func TestVehiclePayloadLimitsSpeed(t *testing.T) {
	v := NewVehicle("HT-1", model.VehicleHaulTruck, origin)
	v.Telemetry.Payload = v.Spec.MaxPayload
	v.SetTargetSpeed(45)
	v.Update(1)
	assert.InDelta(t, 45*0.7, v.TargetSpeed(), 1e-9)
}

func TestVehicleIdleBurnsNoFuel(t *testing.T) {
	v := NewVehicle("HT-1", model.VehicleHaulTruck, origin)
	v.Update(60)
	assert.Equal(t, 100.0, v.Telemetry.FuelLevel)
	assert.Equal(t, origin, v.Position)

	v.State = model.CycleLoading
	v.Update(60)
	assert.Less(t, v.Telemetry.FuelLevel, 100.0)
}

func TestVehicleInactiveFrozen(t *testing.T) {
	v := NewVehicle("HT-1", model.VehicleHaulTruck, origin)
	v.Active = false
	v.SetTargetSpeed(30)
	v.Update(1)
	assert.Zero(t, v.Telemetry.Speed)
}

func TestVehiclePredictAndRecord(t *testing.T) {
	v := NewVehicle("HT-1", model.VehicleHaulTruck, origin)
	assert.Equal(t, origin, v.Predict(10))

	v.Telemetry.Speed = 36
	v.SetHeading(0)
	p := v.Predict(10)
	assert.InDelta(t, 100, Distance(origin, p), 0.5)
	assert.Greater(t, p.Latitude, origin.Latitude)

	rec := v.Record(1700000000000)
	require.Equal(t, "HT-1", rec.VehicleID)
	assert.Equal(t, int64(1700000000000), rec.Timestamp)
	assert.Equal(t, model.VehicleHaulTruck, rec.VehicleType)
	assert.Equal(t, v.Telemetry, rec.Telemetry)
}
