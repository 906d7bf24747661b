package simulator

import (
	"github.com/kilianp07/mineguard/core/model"
)

// Cycle speeds in km/h and dwell times in seconds.
const (
	haulSpeed     = 35.0
	returnSpeed   = 40.0
	approachSpeed = 10.0
	patrolSpeed   = 45.0
	loadingTime   = 120.0
	dumpingTime   = 45.0

	// sharpTurn slows a vehicle down to approachSpeed at a waypoint.
	sharpTurn = 30.0
)

type navState struct {
	route   Route
	index   int
	arrival float64 // meters
	wait    float64 // seconds left loading or dumping
	waiting bool
}

// Fleet moves vehicles along their routes and through the
// load → haul → dump → return cycle.
type Fleet struct {
	layout   Layout
	vehicles []*Vehicle
	nav      map[string]*navState
}

// NewFleet returns the default fleet on the default layout: three haul
// trucks at different points of the cycle, one excavator at the loading
// area and one light vehicle on patrol.
func NewFleet() *Fleet {
	f := &Fleet{layout: DefaultLayout(), nav: make(map[string]*navState)}
	wp := f.layout.Waypoints

	ht1 := f.add("HT-101", model.VehicleHaulTruck, wp["PIT_LOAD_1"], &navState{route: haulRoute, arrival: 20, wait: loadingTime, waiting: true})
	ht1.State = model.CycleLoading

	ht2 := f.add("HT-102", model.VehicleHaulTruck, wp["ROAD_1"], &navState{route: haulRoute, index: 4, arrival: 20})
	ht2.State = model.CycleHauling
	ht2.Telemetry.Payload = ht2.Spec.MaxPayload
	ht2.SetTargetSpeed(haulSpeed)

	ht3 := f.add("HT-103", model.VehicleHaulTruck, wp["DUMP_APPROACH"], &navState{route: haulRoute, index: 6, arrival: 20})
	ht3.State = model.CycleHauling
	ht3.Telemetry.Payload = ht3.Spec.MaxPayload
	ht3.SetTargetSpeed(haulSpeed)

	f.add("EX-201", model.VehicleExcavator, wp["PIT_LOAD_1"], &navState{route: Route{"PIT_LOAD_1"}, arrival: 5, waiting: true})

	lv := f.add("LV-301", model.VehicleLightVehicle, wp["PATROL_1"], &navState{route: patrolRoute, index: 1, arrival: 15})
	lv.State = model.CycleHauling
	lv.SetTargetSpeed(patrolSpeed)

	for _, v := range f.vehicles {
		nav := f.nav[v.ID]
		if !nav.waiting && nav.index < len(nav.route) {
			v.SetHeading(Bearing(v.Position, wp[nav.route[nav.index]]))
		}
	}
	return f
}

func (f *Fleet) add(id string, t model.VehicleType, pos model.Position, nav *navState) *Vehicle {
	v := NewVehicle(id, t, pos)
	f.vehicles = append(f.vehicles, v)
	f.nav[id] = nav
	return v
}

// Vehicles returns the simulated vehicles in creation order.
func (f *Fleet) Vehicles() []*Vehicle { return f.vehicles }

// Layout returns the mine layout the fleet drives on.
func (f *Fleet) Layout() Layout { return f.layout }

// Update advances every vehicle by dt seconds.
func (f *Fleet) Update(dt float64) {
	for _, v := range f.vehicles {
		if v.Type != model.VehicleExcavator {
			f.navigate(v, f.nav[v.ID], dt)
		}
		v.Update(dt)
	}
}

// Telemetry returns one record per vehicle stamped ts (Unix ms).
func (f *Fleet) Telemetry(ts int64) []model.TelemetryRecord {
	out := make([]model.TelemetryRecord, len(f.vehicles))
	for i, v := range f.vehicles {
		out[i] = v.Record(ts)
	}
	return out
}

func (f *Fleet) navigate(v *Vehicle, nav *navState, dt float64) {
	if nav.waiting {
		nav.wait -= dt
		if nav.wait <= 0 {
			nav.waiting = false
			f.advanceCycle(v, nav)
		}
		return
	}
	if nav.index >= len(nav.route) {
		return
	}

	target := f.layout.Waypoints[nav.route[nav.index]]
	v.SetHeading(Bearing(v.Position, target))
	if Distance(v.Position, target) >= nav.arrival {
		return
	}

	nav.index++
	if nav.index >= len(nav.route) {
		f.routeComplete(v, nav)
		return
	}
	next := f.layout.Waypoints[nav.route[nav.index]]
	if HeadingDifference(Bearing(v.Position, next), v.Telemetry.Heading) > sharpTurn {
		v.SetTargetSpeed(approachSpeed)
	}
}

// advanceCycle leaves the loading or dumping area once the dwell time is
// over.
func (f *Fleet) advanceCycle(v *Vehicle, nav *navState) {
	switch v.State {
	case model.CycleLoading:
		v.State = model.CycleHauling
		v.Telemetry.Payload = v.Spec.MaxPayload
		nav.route, nav.index = haulRoute, 1
		v.SetTargetSpeed(haulSpeed)
	case model.CycleDumping:
		v.State = model.CycleReturning
		v.Telemetry.Payload = 0
		nav.route, nav.index = returnRoute, 1
		v.SetTargetSpeed(returnSpeed)
	}
}

func (f *Fleet) routeComplete(v *Vehicle, nav *navState) {
	v.SetTargetSpeed(0)
	if v.Type == model.VehicleLightVehicle {
		nav.route, nav.index = patrolRoute, 0
		v.SetTargetSpeed(patrolSpeed)
		return
	}
	switch v.State {
	case model.CycleHauling:
		v.State = model.CycleDumping
		nav.waiting, nav.wait = true, dumpingTime
	case model.CycleReturning:
		v.State = model.CycleLoading
		nav.waiting, nav.wait = true, loadingTime
	}
}
