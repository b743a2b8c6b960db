package archive

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps database access for the long-term sample archive.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by a pgx pool.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Sensor is an archived sensor metadata record.
type Sensor struct {
	Name      string    `json:"name"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// SampleRow is one archived observation.
type SampleRow struct {
	Sensor    string    `json:"sensor"`
	Timestamp time.Time `json:"ts"`
	Value     float64   `json:"value"`
}

const listSensorsSQL = `
    SELECT name, first_seen, last_seen
    FROM agridash.sensors
    ORDER BY name
`

// ListSensors returns all archived sensor metadata.
func (s *Store) ListSensors(ctx context.Context) ([]Sensor, error) {
	rows, err := s.pool.Query(ctx, listSensorsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sensors := make([]Sensor, 0)
	for rows.Next() {
		var sensor Sensor
		if err := rows.Scan(&sensor.Name, &sensor.FirstSeen, &sensor.LastSeen); err != nil {
			return nil, err
		}
		sensors = append(sensors, sensor)
	}
	return sensors, rows.Err()
}

// UpsertSensors records the sensors seen in a feed pass.
func (s *Store) UpsertSensors(ctx context.Context, names []string, seen time.Time) error {
	if len(names) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `INSERT INTO agridash.sensors (name, first_seen, last_seen)
VALUES ($1, $2, $2)
ON CONFLICT (name) DO UPDATE
SET last_seen = EXCLUDED.last_seen`

	for _, name := range names {
		batch.Queue(query, name, seen)
	}

	res := s.pool.SendBatch(ctx, batch)
	defer res.Close()

	for range names {
		if _, err := res.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LastSampleTimes loads the most recent archived timestamp per sensor.
func (s *Store) LastSampleTimes(ctx context.Context, names []string) (map[string]time.Time, error) {
	result := make(map[string]time.Time, len(names))
	if len(names) == 0 {
		return result, nil
	}

	rows, err := s.pool.Query(ctx, `
SELECT DISTINCT ON (sensor) sensor, ts
FROM agridash.samples
WHERE sensor = ANY($1)
ORDER BY sensor, ts DESC`, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var sensor string
		var ts time.Time
		if err := rows.Scan(&sensor, &ts); err != nil {
			return nil, err
		}
		result[sensor] = ts
	}
	return result, rows.Err()
}

// InsertSamples writes new observations to the archive.
func (s *Store) InsertSamples(ctx context.Context, samples []SampleRow) error {
	if len(samples) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `INSERT INTO agridash.samples (sensor, ts, value, ingested_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (sensor, ts) DO UPDATE
SET value = EXCLUDED.value`

	for _, row := range samples {
		batch.Queue(query, row.Sensor, row.Timestamp, row.Value)
	}

	res := s.pool.SendBatch(ctx, batch)
	defer res.Close()

	for range samples {
		if _, err := res.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// SampleQuery holds filters for retrieving archived samples.
type SampleQuery struct {
	Sensor string
	Limit  int
	Since  *time.Time
	Until  *time.Time
}

const fetchSamplesBase = `
    SELECT sensor, ts, value
    FROM agridash.samples
    WHERE sensor = $1
`

// FetchSamples returns archived samples for a sensor based on the query.
func (s *Store) FetchSamples(ctx context.Context, q SampleQuery) ([]SampleRow, error) {
	args := []any{q.Sensor}
	clause := ""
	argPos := 2
	if q.Since != nil {
		clause += " AND ts >= $" + strconv.Itoa(argPos)
		args = append(args, *q.Since)
		argPos++
	}
	if q.Until != nil {
		clause += " AND ts <= $" + strconv.Itoa(argPos)
		args = append(args, *q.Until)
		argPos++
	}
	// Limit keeps the most recent rows; the subquery re-sorts them
	// ascending so callers always see chronological order.
	sql := fetchSamplesBase + clause + " ORDER BY ts"
	if q.Limit > 0 {
		sql = "SELECT sensor, ts, value FROM (" +
			fetchSamplesBase + clause +
			" ORDER BY ts DESC LIMIT $" + strconv.Itoa(argPos) +
			") recent ORDER BY ts"
		args = append(args, q.Limit)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	samples := make([]SampleRow, 0)
	for rows.Next() {
		var row SampleRow
		if err := rows.Scan(&row.Sensor, &row.Timestamp, &row.Value); err != nil {
			return nil, err
		}
		samples = append(samples, row)
	}
	return samples, rows.Err()
}
