package feed

import (
	"encoding/json"
	"time"
)

// Range selects the aggregation window for chart queries.
type Range string

const (
	RangeDay   Range = "day"
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
)

// ParseRange validates a user-supplied range string.
func ParseRange(s string) (Range, bool) {
	switch Range(s) {
	case RangeDay, RangeWeek, RangeMonth:
		return Range(s), true
	}
	return "", false
}

// windowDays returns the number of trailing calendar days covered by an
// aggregated range (today included).
func (r Range) windowDays() int {
	if r == RangeMonth {
		return 30
	}
	return 7
}

// Sample is one decoded sensor observation.
type Sample struct {
	Timestamp time.Time
	Value     float64
	// HourOfDay is hours + minutes/60, the x coordinate for
	// single-day plots.
	HourOfDay float64
}

// SampleSet maps lower-cased sensor names to their samples in feed row
// order. Sorting happens at query time because the range modes sort
// differently.
type SampleSet map[string][]Sample

// Point is a render-ready chart point. Day-range points carry Hour,
// week/month points carry Date ("DD/MM").
type Point struct {
	Hour  float64
	Date  string
	Value float64
	Label string

	ts time.Time // sort key
}

// MarshalJSON emits the {x, y, label} shape the chart components consume:
// x is numeric hour-of-day for day points and a "DD/MM" string for
// aggregated points.
func (p Point) MarshalJSON() ([]byte, error) {
	var x any = p.Hour
	if p.Date != "" {
		x = p.Date
	}
	return json.Marshal(struct {
		X     any     `json:"x"`
		Y     float64 `json:"y"`
		Label string  `json:"label"`
	}{X: x, Y: p.Value, Label: p.Label})
}

// SeriesSet maps sensor names to ordered chart points. Sensors without
// points in the requested range are absent from the map.
type SeriesSet map[string][]Point
