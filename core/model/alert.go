package model

import "encoding/json"

// AlertPriority grades a collision alert by time to impact.
type AlertPriority int

const (
	PriorityNone AlertPriority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p AlertPriority) String() string {
	switch p {
	case PriorityLow:
		return "LOW"
	case PriorityMedium:
		return "MEDIUM"
	case PriorityHigh:
		return "HIGH"
	case PriorityCritical:
		return "CRITICAL"
	default:
		return "NONE"
	}
}

// AlertType describes the geometry of a predicted conflict.
type AlertType int

const (
	AlertApproach AlertType = iota
	AlertCrossing
	AlertTailgating
	AlertBlindSpot
)

func (t AlertType) String() string {
	switch t {
	case AlertApproach:
		return "APPROACH"
	case AlertCrossing:
		return "CROSSING"
	case AlertTailgating:
		return "TAILGATING"
	case AlertBlindSpot:
		return "BLIND_SPOT"
	default:
		return "UNKNOWN"
	}
}

// CollisionAlert is a predicted conflict between two vehicles. Values are
// immutable once received.
type CollisionAlert struct {
	VehicleID1   string        `json:"vehicleId1"`
	VehicleID2   string        `json:"vehicleId2"`
	Priority     AlertPriority `json:"priority"`
	AlertType    AlertType     `json:"alertType"`
	TimeToImpact float64       `json:"timeToImpact"` // seconds
	Distance     float64       `json:"distance"`     // meters
	Timestamp    int64         `json:"timestamp"`
}

// MarshalJSON adds the priority and type names consumed by the dashboard.
func (a CollisionAlert) MarshalJSON() ([]byte, error) {
	type plain CollisionAlert
	return json.Marshal(struct {
		plain
		PriorityName  string `json:"priorityName"`
		AlertTypeName string `json:"alertTypeName"`
	}{
		plain:         plain(a),
		PriorityName:  a.Priority.String(),
		AlertTypeName: a.AlertType.String(),
	})
}
