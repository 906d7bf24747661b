package simulator

import (
	"math"

	"github.com/kilianp07/mineguard/core/model"
)

const (
	earthRadius = 6371000.0 // meters
	degToRad    = math.Pi / 180
	radToDeg    = 180 / math.Pi
	kmhToMs     = 1 / 3.6
)

// Distance returns the flat-earth distance in meters between a and b. It is
// accurate for the few kilometers a mine site spans.
func Distance(a, b model.Position) float64 {
	dlat := (b.Latitude - a.Latitude) * degToRad
	dlon := (b.Longitude - a.Longitude) * degToRad
	dx := dlon * math.Cos(a.Latitude*degToRad) * earthRadius
	dy := dlat * earthRadius
	return math.Hypot(dx, dy)
}

// Bearing returns the heading in degrees from one position to another,
// 0 = north, clockwise.
func Bearing(from, to model.Position) float64 {
	dx := (to.Longitude - from.Longitude) * math.Cos(from.Latitude*degToRad)
	dy := to.Latitude - from.Latitude
	return NormalizeHeading(math.Atan2(dx, dy) * radToDeg)
}

// Offset moves p by meters along heading. Altitude is kept.
func Offset(p model.Position, heading, meters float64) model.Position {
	rad := heading * degToRad
	dx := meters * math.Sin(rad)
	dy := meters * math.Cos(rad)
	return model.Position{
		Latitude:  p.Latitude + dy/earthRadius*radToDeg,
		Longitude: p.Longitude + dx/(earthRadius*math.Cos(p.Latitude*degToRad))*radToDeg,
		Altitude:  p.Altitude,
	}
}

// NormalizeHeading maps h into [0, 360).
func NormalizeHeading(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// HeadingDifference returns the smallest angle between two headings, in
// [0, 180].
func HeadingDifference(a, b float64) float64 {
	d := math.Abs(NormalizeHeading(a) - NormalizeHeading(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}
