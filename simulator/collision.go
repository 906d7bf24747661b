package simulator

import (
	"time"

	"github.com/kilianp07/mineguard/core/model"
)

const (
	predictionHorizon = 15.0  // seconds
	predictionStep    = 0.5   // seconds
	minMovingSpeed    = 1.0   // km/h
	maxCheckDistance  = 500.0 // meters
	divergingAfter    = 3.0   // seconds
)

// Detector predicts conflicts between pairs of vehicles by projecting
// their straight-line paths and finding the closest point of approach.
type Detector struct {
	now func() time.Time
}

// NewDetector returns a Detector stamping alerts with the wall clock.
func NewDetector() *Detector { return &Detector{now: time.Now} }

// CheckAll returns one alert per conflicting pair of active vehicles.
func (d *Detector) CheckAll(vehicles []*Vehicle) []model.CollisionAlert {
	alerts := []model.CollisionAlert{}
	for i := 0; i < len(vehicles); i++ {
		for j := i + 1; j < len(vehicles); j++ {
			if !vehicles[i].Active || !vehicles[j].Active {
				continue
			}
			if a, ok := d.CheckPair(vehicles[i], vehicles[j]); ok {
				alerts = append(alerts, a)
			}
		}
	}
	return alerts
}

// CheckPair reports whether a and b are predicted to come within their
// combined safety radius inside the prediction horizon.
func (d *Detector) CheckPair(a, b *Vehicle) (model.CollisionAlert, bool) {
	if a.Telemetry.Speed <= minMovingSpeed && b.Telemetry.Speed <= minMovingSpeed {
		return model.CollisionAlert{}, false
	}
	radius := a.Spec.SafetyRadius + b.Spec.SafetyRadius
	current := Distance(a.Position, b.Position)
	if current > maxCheckDistance {
		return model.CollisionAlert{}, false
	}
	if current < radius {
		return d.alert(a, b, model.PriorityCritical, 0, current), true
	}

	closest, tti := current, -1.0
	steps := int(predictionHorizon / predictionStep)
	for i := 1; i <= steps; i++ {
		t := float64(i) * predictionStep
		dist := Distance(a.Predict(t), b.Predict(t))
		if dist < closest {
			closest, tti = dist, t
		}
		if dist > current*1.5 && t > divergingAfter {
			break
		}
	}
	if tti <= 0 || closest >= radius {
		return model.CollisionAlert{}, false
	}
	p := PriorityFromTTI(tti)
	if p == model.PriorityNone {
		return model.CollisionAlert{}, false
	}
	return d.alert(a, b, p, tti, closest), true
}

func (d *Detector) alert(a, b *Vehicle, p model.AlertPriority, tti, dist float64) model.CollisionAlert {
	return model.CollisionAlert{
		VehicleID1:   a.ID,
		VehicleID2:   b.ID,
		Priority:     p,
		AlertType:    Classify(a.Telemetry.Heading, b.Telemetry.Heading),
		TimeToImpact: tti,
		Distance:     dist,
		Timestamp:    d.now().UnixMilli(),
	}
}

// PriorityFromTTI grades a time to impact in seconds.
func PriorityFromTTI(tti float64) model.AlertPriority {
	switch {
	case tti < 3:
		return model.PriorityCritical
	case tti < 5:
		return model.PriorityHigh
	case tti < 10:
		return model.PriorityMedium
	case tti < 15:
		return model.PriorityLow
	}
	return model.PriorityNone
}

// Classify derives the alert type from the heading difference of the two
// vehicles.
func Classify(h1, h2 float64) model.AlertType {
	diff := HeadingDifference(h1, h2)
	switch {
	case diff < 30:
		return model.AlertTailgating
	case diff > 150:
		return model.AlertApproach
	case diff > 60 && diff < 120:
		return model.AlertCrossing
	}
	return model.AlertBlindSpot
}
