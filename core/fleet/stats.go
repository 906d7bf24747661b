package fleet

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/mineguard/core/model"
)

// Stats summarises the current fleet for operators.
type Stats struct {
	Vehicles         int            `json:"vehicles"`
	ByType           map[string]int `json:"byType"`
	ByCycleState     map[string]int `json:"byCycleState"`
	MeanSpeed        float64        `json:"meanSpeed"`
	SpeedStdDev      float64        `json:"speedStdDev"`
	MaxSpeed         float64        `json:"maxSpeed"`
	MeanFuelLevel    float64        `json:"meanFuelLevel"`
	MinFuelLevel     float64        `json:"minFuelLevel"`
	TotalPayload     float64        `json:"totalPayload"`
	AlertsByPriority map[string]int `json:"alertsByPriority"`
}

// ComputeStats derives Stats from vehicles and the active alert set.
func ComputeStats(vehicles []model.Vehicle, active []model.CollisionAlert) Stats {
	st := Stats{
		Vehicles:         len(vehicles),
		ByType:           map[string]int{},
		ByCycleState:     map[string]int{},
		AlertsByPriority: map[string]int{},
	}
	for _, a := range active {
		st.AlertsByPriority[a.Priority.String()]++
	}
	if len(vehicles) == 0 {
		return st
	}

	speeds := make([]float64, len(vehicles))
	fuel := make([]float64, len(vehicles))
	payload := make([]float64, len(vehicles))
	for i, v := range vehicles {
		st.ByType[v.VehicleType.String()]++
		st.ByCycleState[v.CycleState.String()]++
		speeds[i] = v.Telemetry.Speed
		fuel[i] = v.Telemetry.FuelLevel
		payload[i] = v.Telemetry.Payload
	}

	// Sample standard deviation is undefined for a single vehicle.
	if len(speeds) > 1 {
		st.MeanSpeed, st.SpeedStdDev = stat.MeanStdDev(speeds, nil)
	} else {
		st.MeanSpeed = speeds[0]
	}
	st.MaxSpeed = floats.Max(speeds)
	st.MeanFuelLevel = stat.Mean(fuel, nil)
	st.MinFuelLevel = floats.Min(fuel)
	st.TotalPayload = floats.Sum(payload)
	return st
}
