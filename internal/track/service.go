package track

import (
	"context"
	"errors"

	"backend-ridehub/internal/analysis"
	"backend-ridehub/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("track record not found")

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// CreateRecord inserts a new record in the given state. For background
// processing the raw upload is stored alongside so a worker on any instance
// can pick it up; it is cleared again when the record reaches a terminal
// state.
func (s *Service) CreateRecord(ctx context.Context, rec Record, rawGPX []byte) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = StatusPending
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO track_records (id, trip_id, processing_status, error_detail, raw_gpx)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, rec.ID, rec.TripID, rec.Status, nullString(rec.ErrorDetail), rawGPX)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// SaveResult persists a completed pipeline run. The derived rows go in
// first and the record is flipped to completed last, so a reader never sees
// a completed record with missing children. The guard on non-terminal
// status keeps terminal records immutable.
func (s *Service) SaveResult(ctx context.Context, id string, res *Result) error {
	for i := range res.Points {
		p := &res.Points[i]
		_, err := s.db.Exec(ctx, `
			INSERT INTO simplified_points (track_id, sequence, latitude, longitude, elevation_m, distance_km, gradient)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, id, p.Sequence, p.Lat, p.Lng, p.ElevationM, p.DistanceKm, p.Gradient)
		if err != nil {
			return err
		}
	}

	if res.Statistics != nil {
		st := res.Statistics
		d := st.GradientDistribution
		_, err := s.db.Exec(ctx, `
			INSERT INTO route_statistics (track_id, avg_speed_kmh, max_speed_kmh, total_time_min, moving_time_min,
				avg_gradient, max_gradient,
				flat_km, flat_pct, moderate_km, moderate_pct, steep_km, steep_pct, very_steep_km, very_steep_pct)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		`, id, st.AvgSpeedKmh, st.MaxSpeedKmh, st.TotalTimeMin, st.MovingTimeMin,
			st.AvgGradient, st.MaxGradient,
			d.Flat.DistanceKm, d.Flat.Percentage,
			d.Moderate.DistanceKm, d.Moderate.Percentage,
			d.Steep.DistanceKm, d.Steep.Percentage,
			d.VerySteep.DistanceKm, d.VerySteep.Percentage)
		if err != nil {
			return err
		}

		for rank, c := range st.TopClimbs {
			_, err := s.db.Exec(ctx, `
				INSERT INTO track_climbs (track_id, rank, start_km, end_km, distance_km, elevation_gain_m, avg_gradient, description)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			`, id, rank+1, c.StartKm, c.EndKm, c.DistanceKm, c.ElevationGainM, c.AvgGradient, c.Description)
			if err != nil {
				return err
			}
		}
	}

	var gain, loss, max, min *float64
	if res.Elevation != nil {
		gain, loss, max, min = &res.Elevation.GainM, &res.Elevation.LossM, &res.Elevation.MaxM, &res.Elevation.MinM
	}
	_, err := s.db.Exec(ctx, `
		UPDATE track_records
		SET total_points=$2, simplified_points=$3, total_distance_km=$4,
			elevation_gain_m=$5, elevation_loss_m=$6, elevation_max_m=$7, elevation_min_m=$8,
			has_elevation=$9, has_timestamps=$10,
			processing_status=$11, processed_at=now(), raw_gpx=NULL
		WHERE id=$1 AND processing_status NOT IN ('completed','error')
	`, id, res.TotalPoints, len(res.Points), res.TotalDistanceKm,
		gain, loss, max, min,
		res.Elevation != nil, res.HasTimestamps, StatusCompleted)
	return err
}

// MarkError transitions a record to its terminal error state. Derived
// fields stay absent; success is all-or-nothing.
func (s *Service) MarkError(ctx context.Context, id, detail string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE track_records
		SET processing_status=$2, error_detail=$3, processed_at=now(), raw_gpx=NULL
		WHERE id=$1 AND processing_status NOT IN ('completed','error')
	`, id, StatusError, detail)
	return err
}

func (s *Service) MarkProcessing(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE track_records SET processing_status=$2
		WHERE id=$1 AND processing_status=$3
	`, id, StatusProcessing, StatusPending)
	return err
}

func (s *Service) Record(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, trip_id, total_points, simplified_points, COALESCE(total_distance_km,0),
			elevation_gain_m, elevation_loss_m, elevation_max_m, elevation_min_m,
			has_elevation, has_timestamps, processing_status, COALESCE(error_detail,''),
			created_at, processed_at
		FROM track_records WHERE id=$1
	`, id)

	var rec Record
	var gain, loss, max, min *float64
	err := row.Scan(&rec.ID, &rec.TripID, &rec.TotalPoints, &rec.SimplifiedPoints, &rec.TotalDistanceKm,
		&gain, &loss, &max, &min,
		&rec.HasElevation, &rec.HasTimestamps, &rec.Status, &rec.ErrorDetail,
		&rec.CreatedAt, &rec.ProcessedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	if rec.HasElevation && gain != nil && loss != nil && max != nil && min != nil {
		rec.Elevation = &analysis.ElevationStats{GainM: *gain, LossM: *loss, MaxM: *max, MinM: *min}
	}
	return rec, nil
}

func (s *Service) Points(ctx context.Context, id string) ([]Point, error) {
	rows, err := s.db.Query(ctx, `
		SELECT sequence, latitude, longitude, elevation_m, distance_km, gradient
		FROM simplified_points WHERE track_id=$1
		ORDER BY sequence
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var p Point
		if err := rows.Scan(&p.Sequence, &p.Lat, &p.Lng, &p.ElevationM, &p.DistanceKm, &p.Gradient); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *Service) Statistics(ctx context.Context, id string) (*Statistics, error) {
	row := s.db.QueryRow(ctx, `
		SELECT avg_speed_kmh, max_speed_kmh, total_time_min, moving_time_min,
			avg_gradient, max_gradient,
			flat_km, flat_pct, moderate_km, moderate_pct, steep_km, steep_pct, very_steep_km, very_steep_pct
		FROM route_statistics WHERE track_id=$1
	`, id)

	var st Statistics
	d := &st.GradientDistribution
	err := row.Scan(&st.AvgSpeedKmh, &st.MaxSpeedKmh, &st.TotalTimeMin, &st.MovingTimeMin,
		&st.AvgGradient, &st.MaxGradient,
		&d.Flat.DistanceKm, &d.Flat.Percentage,
		&d.Moderate.DistanceKm, &d.Moderate.Percentage,
		&d.Steep.DistanceKm, &d.Steep.Percentage,
		&d.VerySteep.DistanceKm, &d.VerySteep.Percentage)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	st.TopClimbs = []analysis.Climb{}
	rows, err := s.db.Query(ctx, `
		SELECT start_km, end_km, distance_km, elevation_gain_m, avg_gradient, description
		FROM track_climbs WHERE track_id=$1
		ORDER BY rank
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c analysis.Climb
		if err := rows.Scan(&c.StartKm, &c.EndKm, &c.DistanceKm, &c.ElevationGainM, &c.AvgGradient, &c.Description); err != nil {
			return nil, err
		}
		st.TopClimbs = append(st.TopClimbs, c)
	}
	return &st, rows.Err()
}

func (s *Service) RawGPX(ctx context.Context, id string) ([]byte, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `SELECT raw_gpx FROM track_records WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Payload assembles what the status and read boundaries serve. For a
// completed record it includes the simplified sequence and statistics;
// before that, or after an error, the record alone. Reads never mutate,
// so polling a terminal record returns the same payload indefinitely.
func (s *Service) Payload(ctx context.Context, id string) (Payload, error) {
	rec, err := s.Record(ctx, id)
	if err != nil {
		return Payload{}, err
	}

	payload := Payload{Record: rec}
	if rec.Status != StatusCompleted {
		return payload, nil
	}

	if payload.Points, err = s.Points(ctx, id); err != nil {
		return Payload{}, err
	}
	if payload.Statistics, err = s.Statistics(ctx, id); err != nil {
		return Payload{}, err
	}
	return payload, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
