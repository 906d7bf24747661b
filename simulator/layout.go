package simulator

import "github.com/kilianp07/mineguard/core/model"

// Route is an ordered list of waypoint names.
type Route []string

var (
	haulRoute   = Route{"PIT_LOAD_1", "RAMP_BOT", "RAMP_MID", "RAMP_TOP", "ROAD_1", "ROAD_2", "DUMP_APPROACH", "DUMP_1"}
	returnRoute = Route{"DUMP_1", "DUMP_APPROACH", "ROAD_2", "ROAD_1", "RAMP_TOP", "RAMP_MID", "RAMP_BOT", "PIT_LOAD_1"}
	patrolRoute = Route{"PATROL_1", "PATROL_2", "PATROL_3", "PATROL_4"}
)

// Layout holds the named waypoints of a mine.
type Layout struct {
	Waypoints map[string]model.Position
}

// DefaultLayout is an open-pit mine with a loading area, a ramp, a haul
// road, a dump and a light-vehicle patrol loop.
func DefaultLayout() Layout {
	return Layout{Waypoints: map[string]model.Position{
		"PIT_LOAD_1": {Latitude: -20.12200, Longitude: -43.95200, Altitude: 820},
		"PIT_LOAD_2": {Latitude: -20.12250, Longitude: -43.95150, Altitude: 820},

		"RAMP_BOT": {Latitude: -20.12100, Longitude: -43.95100, Altitude: 840},
		"RAMP_MID": {Latitude: -20.12000, Longitude: -43.95000, Altitude: 860},
		"RAMP_TOP": {Latitude: -20.11900, Longitude: -43.94900, Altitude: 880},

		"ROAD_1": {Latitude: -20.11800, Longitude: -43.94800, Altitude: 890},
		"ROAD_2": {Latitude: -20.11700, Longitude: -43.94700, Altitude: 895},

		"DUMP_APPROACH": {Latitude: -20.11600, Longitude: -43.94600, Altitude: 900},
		"DUMP_1":        {Latitude: -20.11550, Longitude: -43.94550, Altitude: 900},
		"DUMP_2":        {Latitude: -20.11500, Longitude: -43.94600, Altitude: 900},

		"PATROL_1": {Latitude: -20.11950, Longitude: -43.94950, Altitude: 870},
		"PATROL_2": {Latitude: -20.11750, Longitude: -43.94750, Altitude: 892},
		"PATROL_3": {Latitude: -20.11600, Longitude: -43.94650, Altitude: 898},
		"PATROL_4": {Latitude: -20.11850, Longitude: -43.94850, Altitude: 885},
	}}
}
