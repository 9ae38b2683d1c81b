package mixer

import "math"

// Peak meter scale, in dB below full scale
const (
	MeterRangeDB = 50.0 // lowest reading shown
	MeterHighDB  = 10.0 // start of the yellow zone
	MeterOverDB  = 3.0  // start of the red zone
	MeterFloorDB = -200.0
)

// Zone is the colour band of a meter reading
type Zone int

const (
	ZoneOff Zone = iota
	ZoneLow
	ZoneHigh
	ZoneOver
)

var (
	meterHigh = 1 - MeterHighDB/MeterRangeDB
	meterOver = 1 - MeterOverDB/MeterRangeDB
)

// MeterFraction maps a dBFS reading onto 0..1 of the meter height
func MeterFraction(db float64) float64 {
	return math.Max(0, math.Min(1, 1+db/MeterRangeDB))
}

// MeterZone returns the band a meter fraction reaches into
func MeterZone(frac float64) Zone {
	switch {
	case frac <= 0:
		return ZoneOff
	case frac >= meterOver:
		return ZoneOver
	case frac >= meterHigh:
		return ZoneHigh
	default:
		return ZoneLow
	}
}

// Meter is one strip's stereo peak reading
type Meter struct {
	Peak [2]float64 // fractions 0..1
	Hold [2]float64
	Mono bool
}
