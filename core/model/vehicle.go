package model

import "encoding/json"

// VehicleType identifies the class of mining equipment.
type VehicleType int

const (
	VehicleHaulTruck VehicleType = iota
	VehicleExcavator
	VehicleLightVehicle
)

func (t VehicleType) String() string {
	switch t {
	case VehicleHaulTruck:
		return "HaulTruck"
	case VehicleExcavator:
		return "Excavator"
	case VehicleLightVehicle:
		return "LightVehicle"
	default:
		return "Unknown"
	}
}

// CycleState is the position of a vehicle in the load/haul/dump cycle.
type CycleState int

const (
	CycleIdle CycleState = iota
	CycleLoading
	CycleHauling
	CycleDumping
	CycleReturning
)

func (s CycleState) String() string {
	switch s {
	case CycleIdle:
		return "IDLE"
	case CycleLoading:
		return "LOADING"
	case CycleHauling:
		return "HAULING"
	case CycleDumping:
		return "DUMPING"
	case CycleReturning:
		return "RETURNING"
	default:
		return "UNKNOWN"
	}
}

// Position is a WGS84 coordinate with altitude in meters.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

// Telemetry holds the instantaneous readings of a vehicle.
type Telemetry struct {
	Speed     float64 `json:"speed"`     // km/h
	Heading   float64 `json:"heading"`   // degrees, 0 = north, clockwise
	Payload   float64 `json:"payload"`   // tonnes
	FuelLevel float64 `json:"fuelLevel"` // percent
	EngineRPM float64 `json:"engineRpm"`
}

// TelemetryRecord is one vehicle report as received from the producer.
type TelemetryRecord struct {
	VehicleID   string
	Timestamp   int64
	VehicleType VehicleType
	CycleState  CycleState
	Position    Position
	Telemetry   Telemetry
}

// Vehicle is the latest known state of a vehicle. It is replaced wholesale
// by every telemetry record carrying its ID.
type Vehicle struct {
	ID          string      `json:"id"`
	VehicleType VehicleType `json:"vehicleType"`
	CycleState  CycleState  `json:"cycleState"`
	Position    Position    `json:"position"`
	Telemetry   Telemetry   `json:"telemetry"`
	LastUpdate  int64       `json:"lastUpdate"`
	Online      bool        `json:"online"`
}

// VehicleFromRecord builds the vehicle state carried by rec.
func VehicleFromRecord(rec TelemetryRecord) Vehicle {
	return Vehicle{
		ID:          rec.VehicleID,
		VehicleType: rec.VehicleType,
		CycleState:  rec.CycleState,
		Position:    rec.Position,
		Telemetry:   rec.Telemetry,
		LastUpdate:  rec.Timestamp,
		Online:      true,
	}
}

// MarshalJSON adds the human readable enum names consumed by the dashboard.
func (v Vehicle) MarshalJSON() ([]byte, error) {
	type plain Vehicle
	return json.Marshal(struct {
		plain
		VehicleTypeName string `json:"vehicleTypeName"`
		CycleStateName  string `json:"cycleStateName"`
	}{
		plain:           plain(v),
		VehicleTypeName: v.VehicleType.String(),
		CycleStateName:  v.CycleState.String(),
	})
}
