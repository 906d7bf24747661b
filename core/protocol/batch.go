package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kilianp07/mineguard/core/model"
)

// ErrMalformedBatch reports a frame whose payload is not a valid batch.
var ErrMalformedBatch = errors.New("malformed batch")

// BatchType is the type tag sent by the simulator for combined batches.
const BatchType = "batch"

// Batch is one decoded frame.
type Batch struct {
	Type      string
	Telemetry []model.TelemetryRecord
	Alerts    []model.CollisionAlert
}

type wirePosition struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

type wireTelemetry struct {
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`
	Payload   float64 `json:"payload"`
	FuelLevel float64 `json:"fuel_level"`
	EngineRPM float64 `json:"engine_rpm"`
}

type wireRecord struct {
	VehicleID   string        `json:"vehicle_id"`
	Timestamp   int64         `json:"timestamp"`
	VehicleType int           `json:"vehicle_type"`
	CycleState  int           `json:"cycle_state"`
	Position    wirePosition  `json:"position"`
	Telemetry   wireTelemetry `json:"telemetry"`
}

type wireAlert struct {
	VehicleID1   string  `json:"vehicle_id_1"`
	VehicleID2   string  `json:"vehicle_id_2"`
	Priority     int     `json:"priority"`
	AlertType    int     `json:"alert_type"`
	TimeToImpact float64 `json:"time_to_impact"`
	Distance     float64 `json:"distance"`
	Timestamp    int64   `json:"timestamp"`
}

type wireBatch struct {
	Type      string       `json:"type"`
	Telemetry []wireRecord `json:"telemetry"`
	Alerts    []wireAlert  `json:"alerts"`
}

// DecodeBatch parses a frame payload. Missing lists decode as empty; any
// shape error, including a top-level null, rejects the whole batch.
func DecodeBatch(payload []byte) (Batch, error) {
	var wb *wireBatch
	if err := json.Unmarshal(payload, &wb); err != nil {
		return Batch{}, fmt.Errorf("%w: %w", ErrMalformedBatch, err)
	}
	if wb == nil {
		return Batch{}, fmt.Errorf("%w: null payload", ErrMalformedBatch)
	}
	b := Batch{
		Type:      wb.Type,
		Telemetry: make([]model.TelemetryRecord, len(wb.Telemetry)),
		Alerts:    make([]model.CollisionAlert, len(wb.Alerts)),
	}
	for i, r := range wb.Telemetry {
		b.Telemetry[i] = model.TelemetryRecord{
			VehicleID:   r.VehicleID,
			Timestamp:   r.Timestamp,
			VehicleType: model.VehicleType(r.VehicleType),
			CycleState:  model.CycleState(r.CycleState),
			Position:    model.Position(r.Position),
			Telemetry:   model.Telemetry(r.Telemetry),
		}
	}
	for i, a := range wb.Alerts {
		b.Alerts[i] = model.CollisionAlert{
			VehicleID1:   a.VehicleID1,
			VehicleID2:   a.VehicleID2,
			Priority:     model.AlertPriority(a.Priority),
			AlertType:    model.AlertType(a.AlertType),
			TimeToImpact: a.TimeToImpact,
			Distance:     a.Distance,
			Timestamp:    a.Timestamp,
		}
	}
	return b, nil
}

// EncodeBatch renders b in the wire shape understood by DecodeBatch. An
// empty Type is sent as BatchType.
func EncodeBatch(b Batch) ([]byte, error) {
	wb := wireBatch{
		Type:      b.Type,
		Telemetry: make([]wireRecord, len(b.Telemetry)),
		Alerts:    make([]wireAlert, len(b.Alerts)),
	}
	if wb.Type == "" {
		wb.Type = BatchType
	}
	for i, r := range b.Telemetry {
		wb.Telemetry[i] = wireRecord{
			VehicleID:   r.VehicleID,
			Timestamp:   r.Timestamp,
			VehicleType: int(r.VehicleType),
			CycleState:  int(r.CycleState),
			Position:    wirePosition(r.Position),
			Telemetry:   wireTelemetry(r.Telemetry),
		}
	}
	for i, a := range b.Alerts {
		wb.Alerts[i] = wireAlert{
			VehicleID1:   a.VehicleID1,
			VehicleID2:   a.VehicleID2,
			Priority:     int(a.Priority),
			AlertType:    int(a.AlertType),
			TimeToImpact: a.TimeToImpact,
			Distance:     a.Distance,
			Timestamp:    a.Timestamp,
		}
	}
	data, err := json.Marshal(wb)
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}
	return data, nil
}
