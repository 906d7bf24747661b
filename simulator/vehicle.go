package simulator

import (
	"math"

	"github.com/kilianp07/mineguard/core/model"
)

const (
	accelRate = 2.0 // m/s²
	brakeRate = 4.0 // m/s²
	idleRPM   = 800.0
	rpmRange  = 1400.0
)

// Spec holds the static characteristics of a vehicle class.
type Spec struct {
	MaxSpeed        float64 // km/h
	MaxPayload      float64 // tonnes, 0 for non-haulers
	FuelCapacity    float64 // liters
	FuelConsumption float64 // liters/hour at full load
	SafetyRadius    float64 // meters
	Length          float64 // meters
	Width           float64 // meters
}

// DefaultSpec returns the spec of a vehicle class.
func DefaultSpec(t model.VehicleType) Spec {
	switch t {
	case model.VehicleHaulTruck:
		return Spec{MaxSpeed: 45, MaxPayload: 220, FuelCapacity: 3800, FuelConsumption: 180, SafetyRadius: 30, Length: 13, Width: 8}
	case model.VehicleExcavator:
		return Spec{MaxSpeed: 5, FuelCapacity: 2500, FuelConsumption: 120, SafetyRadius: 25, Length: 15, Width: 7}
	case model.VehicleLightVehicle:
		return Spec{MaxSpeed: 60, FuelCapacity: 80, FuelConsumption: 12, SafetyRadius: 10, Length: 5, Width: 2.2}
	}
	return Spec{}
}

// Vehicle is one simulated machine.
type Vehicle struct {
	ID        string
	Type      model.VehicleType
	State     model.CycleState
	Spec      Spec
	Position  model.Position
	Telemetry model.Telemetry
	Active    bool

	targetSpeed float64
}

// NewVehicle places an idle, fully fueled vehicle at pos.
func NewVehicle(id string, t model.VehicleType, pos model.Position) *Vehicle {
	return &Vehicle{
		ID:        id,
		Type:      t,
		State:     model.CycleIdle,
		Spec:      DefaultSpec(t),
		Position:  pos,
		Telemetry: model.Telemetry{FuelLevel: 100, EngineRPM: idleRPM},
		Active:    true,
	}
}

// TargetSpeed returns the speed the vehicle is accelerating towards.
func (v *Vehicle) TargetSpeed() float64 { return v.targetSpeed }

// SetTargetSpeed clamps speed to [0, MaxSpeed].
func (v *Vehicle) SetTargetSpeed(speed float64) {
	v.targetSpeed = math.Max(0, math.Min(speed, v.Spec.MaxSpeed))
}

func (v *Vehicle) SetHeading(h float64) { v.Telemetry.Heading = NormalizeHeading(h) }

// Update advances the vehicle by dt seconds.
func (v *Vehicle) Update(dt float64) {
	if !v.Active {
		return
	}
	current := v.Telemetry.Speed * kmhToMs
	target := v.targetSpeed * kmhToMs
	if diff := target - current; math.Abs(diff) > 0.01 {
		if diff > 0 {
			current = math.Min(current+accelRate*dt, target)
		} else {
			current = math.Max(current-brakeRate*dt, target)
		}
		v.Telemetry.Speed = math.Max(current, 0) / kmhToMs
	}

	v.applyPayload()
	v.Position = v.Predict(dt)
	v.burnFuel(dt)
	if v.Spec.MaxSpeed > 0 {
		v.Telemetry.EngineRPM = idleRPM + v.Telemetry.Speed/v.Spec.MaxSpeed*rpmRange
	}
}

// Predict returns the position after seconds at the current speed and
// heading.
func (v *Vehicle) Predict(seconds float64) model.Position {
	speed := v.Telemetry.Speed * kmhToMs
	if speed < 0.01 {
		return v.Position
	}
	return Offset(v.Position, v.Telemetry.Heading, speed*seconds)
}

// Record renders the vehicle as a telemetry record stamped ts (Unix ms).
func (v *Vehicle) Record(ts int64) model.TelemetryRecord {
	return model.TelemetryRecord{
		VehicleID:   v.ID,
		Timestamp:   ts,
		VehicleType: v.Type,
		CycleState:  v.State,
		Position:    v.Position,
		Telemetry:   v.Telemetry,
	}
}

// applyPayload lowers the effective top speed of a loaded hauler.
func (v *Vehicle) applyPayload() {
	if v.Spec.MaxPayload <= 0 || v.Telemetry.Payload <= 0 {
		return
	}
	ratio := v.Telemetry.Payload / v.Spec.MaxPayload
	if limit := v.Spec.MaxSpeed * (1 - 0.3*ratio); v.targetSpeed > limit {
		v.targetSpeed = limit
	}
}

func (v *Vehicle) burnFuel(dt float64) {
	if v.Spec.FuelCapacity <= 0 {
		return
	}
	if v.Telemetry.Speed < 0.1 && v.State == model.CycleIdle {
		return
	}
	load := 0.3
	if v.Telemetry.Speed > 0.1 {
		load = 0.6 + 0.4*(v.Telemetry.Speed/v.Spec.MaxSpeed)
	}
	if v.Telemetry.Payload > 0 && v.Spec.MaxPayload > 0 {
		load += 0.3 * (v.Telemetry.Payload / v.Spec.MaxPayload)
	}
	liters := v.Telemetry.FuelLevel/100*v.Spec.FuelCapacity - v.Spec.FuelConsumption/3600*load*dt
	v.Telemetry.FuelLevel = math.Max(liters, 0) / v.Spec.FuelCapacity * 100
}
