package feed

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"
)

// ParseOptions controls row decoding.
type ParseOptions struct {
	// Location is the feed's local time zone; nil means time.Local.
	Location *time.Location
	// StrictValues drops rows whose value fails numeric decode instead
	// of defaulting them to 0.0. The lenient default matches the chart
	// consumers, which rely on the row existing for x-axis continuity.
	StrictValues bool
}

// ParseStats counts what happened to the rows of one parse pass.
type ParseStats struct {
	Rows              int
	Samples           int
	SkippedIncomplete int
	SkippedBadDate    int
	SkippedBadValue   int
	DefaultedValues   int
}

// ParseTimestamp decodes a DD/MM/YYYY date and a HH:MM:SS clock time in
// the given location. The second return is false for anything that does
// not form a real instant (bad shape, month 13, day out of range).
func ParseTimestamp(date, clock string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	ts, err := time.ParseInLocation("2/1/2006 15:4:5", date+" "+clock, loc)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// ParseCSV decodes the published tabular feed into samples grouped by
// lower-cased sensor name. The first row is a header and is always
// skipped; rows missing any of the four fields are discarded; malformed
// dates drop the row; malformed values default to 0.0 unless
// StrictValues is set.
func ParseCSV(r io.Reader, opts ParseOptions) (SampleSet, ParseStats) {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	set := make(SampleSet)
	var stats ParseStats
	header := true

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// One malformed line must not sink the whole fetch, but
			// underlying I/O errors are sticky; retrying those reads
			// the same error forever.
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				continue
			}
			break
		}
		if header {
			header = false
			continue
		}
		stats.Rows++

		if len(record) < 4 {
			stats.SkippedIncomplete++
			continue
		}
		name := strings.ToLower(strings.TrimSpace(record[0]))
		date := strings.TrimSpace(record[1])
		clock := strings.TrimSpace(record[2])
		// An unquoted comma-decimal value ("60,1") splits across
		// columns in the export; rejoin everything after the time.
		raw := strings.TrimSpace(strings.Join(record[3:], ","))
		if name == "" || date == "" || clock == "" || raw == "" {
			stats.SkippedIncomplete++
			continue
		}

		ts, ok := ParseTimestamp(date, clock, loc)
		if !ok {
			stats.SkippedBadDate++
			continue
		}

		value, ok := parseValue(raw)
		if !ok {
			if opts.StrictValues {
				stats.SkippedBadValue++
				continue
			}
			stats.DefaultedValues++
			value = 0.0
		}

		set[name] = append(set[name], Sample{
			Timestamp: ts,
			Value:     value,
			HourOfDay: float64(ts.Hour()) + float64(ts.Minute())/60,
		})
		stats.Samples++
	}

	return set, stats
}

// parseValue decodes a decimal that may use either "." or "," as the
// separator.
func parseValue(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
