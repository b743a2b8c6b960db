package feed

import (
	"sort"
	"time"
)

// QuerySamples filters and aggregates a sample set for the requested
// range, evaluated against the given clock and location. It is pure: the
// input set is never modified and repeated calls yield identical output.
//
// day keeps every sample from the current calendar day as its own point.
// week and month collapse samples to one arithmetic-mean point per
// calendar day; plotting every raw sample across 7-30 days would overplot
// the charts, so temporal resolution is traded for readability.
func QuerySamples(set SampleSet, r Range, now time.Time, loc *time.Location) SeriesSet {
	if loc == nil {
		loc = time.Local
	}
	switch r {
	case RangeDay:
		return daySeries(set, now, loc)
	case RangeWeek, RangeMonth:
		return aggregatedSeries(set, now, loc, r.windowDays())
	}
	return SeriesSet{}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func daySeries(set SampleSet, now time.Time, loc *time.Location) SeriesSet {
	start := startOfDay(now, loc)
	end := start.AddDate(0, 0, 1)

	out := make(SeriesSet)
	for name, samples := range set {
		var points []Point
		for _, s := range samples {
			if s.Timestamp.Before(start) || !s.Timestamp.Before(end) {
				continue
			}
			points = append(points, Point{
				Hour:  s.HourOfDay,
				Value: s.Value,
				Label: s.Timestamp.In(loc).Format("15:04"),
				ts:    s.Timestamp,
			})
		}
		if len(points) == 0 {
			continue
		}
		sort.SliceStable(points, func(i, j int) bool {
			return points[i].ts.Before(points[j].ts)
		})
		out[name] = points
	}
	return out
}

func aggregatedSeries(set SampleSet, now time.Time, loc *time.Location, days int) SeriesSet {
	today := startOfDay(now, loc)
	start := today.AddDate(0, 0, -(days - 1))
	end := today.AddDate(0, 0, 1)

	type bucket struct {
		day   time.Time
		sum   float64
		count int
	}

	out := make(SeriesSet)
	for name, samples := range set {
		buckets := make(map[time.Time]*bucket)
		for _, s := range samples {
			ts := s.Timestamp.In(loc)
			if ts.Before(start) || !ts.Before(end) {
				continue
			}
			day := startOfDay(ts, loc)
			b := buckets[day]
			if b == nil {
				b = &bucket{day: day}
				buckets[day] = b
			}
			b.sum += s.Value
			b.count++
		}
		if len(buckets) == 0 {
			continue
		}

		points := make([]Point, 0, len(buckets))
		for _, b := range buckets {
			label := b.day.Format("02/01")
			points = append(points, Point{
				Date:  label,
				Value: b.sum / float64(b.count),
				Label: label,
				ts:    b.day,
			})
		}
		// Sorting on the bucket's real date keeps windows that span a
		// year boundary chronological; a DD/MM string compare would put
		// 03/01 ahead of 28/12.
		sort.Slice(points, func(i, j int) bool {
			return points[i].ts.Before(points[j].ts)
		})
		out[name] = points
	}
	return out
}
