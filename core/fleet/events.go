package fleet

import (
	"time"

	"github.com/kilianp07/mineguard/core/model"
)

// Event is published on the fleet bus after the store changes.
type Event interface {
	OccurredAt() time.Time
}

// BatchApplied reports a batch that is now fully visible to readers.
// Alerts is the new active set, in the order received.
type BatchApplied struct {
	VehicleIDs []string
	Alerts     []model.CollisionAlert
	Status     model.SystemStatus
	At         time.Time
}

func (e BatchApplied) OccurredAt() time.Time { return e.At }

// ConnectionChanged reports a transition of the producer connected flag.
type ConnectionChanged struct {
	Connected bool
	At        time.Time
}

func (e ConnectionChanged) OccurredAt() time.Time { return e.At }
