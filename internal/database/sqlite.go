// internal/database/sqlite.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dominikstraub/Waddle/internal/models"
)

// Times are stored as fixed-width UTC text so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	sqlite := &SQLiteDB{db: db}

	if err := sqlite.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sqlite, nil
}

func (s *SQLiteDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		content_hash TEXT NOT NULL DEFAULT '',
		start_time TEXT NOT NULL,
		activity_type TEXT NOT NULL DEFAULT '',
		lap_count INTEGER NOT NULL,
		point_count INTEGER NOT NULL,
		duration REAL NOT NULL,
		distance REAL NOT NULL,
		max_speed REAL NOT NULL,
		avg_speed REAL NOT NULL,
		max_heart_rate INTEGER NOT NULL DEFAULT 0,
		avg_heart_rate INTEGER NOT NULL DEFAULT 0,
		elevation_gain REAL NOT NULL DEFAULT 0,
		elevation_loss REAL NOT NULL DEFAULT 0,
		start_latitude REAL,
		start_longitude REAL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_activities_content_hash ON activities(content_hash);
	CREATE INDEX IF NOT EXISTS idx_activities_start_time ON activities(start_time);
	CREATE INDEX IF NOT EXISTS idx_activities_activity_type ON activities(activity_type);

	CREATE TABLE IF NOT EXISTS laps (
		activity_id TEXT NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
		lap_index INTEGER NOT NULL,
		point_count INTEGER NOT NULL,
		total_distance REAL NOT NULL,
		total_time REAL NOT NULL,
		max_speed REAL NOT NULL,
		PRIMARY KEY (activity_id, lap_index)
	);

	CREATE TABLE IF NOT EXISTS trackpoints (
		activity_id TEXT NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
		lap_index INTEGER NOT NULL,
		point_index INTEGER NOT NULL,
		time TEXT NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		altitude REAL NOT NULL,
		heart_rate INTEGER,
		distance REAL NOT NULL,
		speed REAL NOT NULL,
		PRIMARY KEY (activity_id, lap_index, point_index)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateActivity stores a parsed activity with its laps and trackpoints in
// one transaction and returns the new id. source is the file name the
// activity came from, contentHash the ContentHash of that file.
func (s *SQLiteDB) CreateActivity(ctx context.Context, source, contentHash string, activity *models.Activity) (string, error) {
	summary := activity.Summary()
	id := uuid.NewString()

	var startLat, startLon sql.NullFloat64
	if summary.Start != nil {
		startLat = sql.NullFloat64{Float64: summary.Start.Lat, Valid: true}
		startLon = sql.NullFloat64{Float64: summary.Start.Lon, Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO activities (
		id, source, content_hash, start_time, activity_type, lap_count, point_count,
		duration, distance, max_speed, avg_speed,
		max_heart_rate, avg_heart_rate, elevation_gain, elevation_loss,
		start_latitude, start_longitude, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, source, contentHash, formatTime(activity.StartTime), activity.Type,
		summary.LapCount, summary.PointCount,
		summary.Duration.Seconds(), summary.Distance, summary.MaxSpeed, summary.AvgSpeed,
		summary.MaxHeartRate, summary.AvgHeartRate, summary.ElevationGain, summary.ElevationLoss,
		startLat, startLon, formatTime(time.Now()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert activity: %w", err)
	}

	lapStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO laps (activity_id, lap_index, point_count, total_distance, total_time, max_speed)
	VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer lapStmt.Close()

	pointStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO trackpoints (
		activity_id, lap_index, point_index, time, latitude, longitude,
		altitude, heart_rate, distance, speed
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer pointStmt.Close()

	for li, lap := range activity.Laps {
		if _, err := lapStmt.ExecContext(ctx, id, li, len(lap.TrackPoints),
			lap.TotalDistance, lap.TotalTime, lap.MaxSpeed); err != nil {
			return "", fmt.Errorf("failed to insert lap %d: %w", li, err)
		}

		for pi, p := range lap.TrackPoints {
			var hr sql.NullInt64
			if p.HeartRate != nil {
				hr = sql.NullInt64{Int64: int64(*p.HeartRate), Valid: true}
			}
			if _, err := pointStmt.ExecContext(ctx, id, li, pi, formatTime(p.Time),
				p.Position.Lat, p.Position.Lon, p.Altitude, hr, p.Distance, p.Speed); err != nil {
				return "", fmt.Errorf("failed to insert trackpoint %d/%d: %w", li, pi, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

const activityColumns = `
	id, source, content_hash, start_time, activity_type, lap_count, point_count,
	duration, distance, max_speed, avg_speed,
	max_heart_rate, avg_heart_rate, elevation_gain, elevation_loss,
	start_latitude, start_longitude, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(row scanner) (*Activity, error) {
	var a Activity
	var startTime, createdAt string
	var startLat, startLon sql.NullFloat64

	err := row.Scan(
		&a.ID, &a.Source, &a.ContentHash, &startTime, &a.ActivityType, &a.LapCount, &a.PointCount,
		&a.Duration, &a.Distance, &a.MaxSpeed, &a.AvgSpeed,
		&a.MaxHeartRate, &a.AvgHeartRate, &a.ElevationGain, &a.ElevationLoss,
		&startLat, &startLon, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	a.StartLatitude = startLat.Float64
	a.StartLongitude = startLon.Float64

	if a.StartTime, err = parseTime(startTime); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}

	return &a, nil
}

func (s *SQLiteDB) queryActivities(ctx context.Context, query string, args ...any) ([]Activity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}

	return activities, rows.Err()
}

func (s *SQLiteDB) GetActivities(ctx context.Context, limit, offset int) ([]Activity, error) {
	return s.queryActivities(ctx,
		`SELECT `+activityColumns+` FROM activities ORDER BY start_time DESC LIMIT ? OFFSET ?`,
		limit, offset)
}

func (s *SQLiteDB) GetActivity(ctx context.Context, id string) (*Activity, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+activityColumns+` FROM activities WHERE id = ?`, id)

	a, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	return a, nil
}

// ContentExists reports whether activities from a file with the given
// ContentHash are stored.
func (s *SQLiteDB) ContentExists(ctx context.Context, contentHash string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activities WHERE content_hash = ?`, contentHash).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *SQLiteDB) GetLaps(ctx context.Context, id string) ([]Lap, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT lap_index, point_count, total_distance, total_time, max_speed
	FROM laps WHERE activity_id = ? ORDER BY lap_index`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	laps := []Lap{}
	for rows.Next() {
		var l Lap
		if err := rows.Scan(&l.LapIndex, &l.PointCount, &l.TotalDistance, &l.TotalTime, &l.MaxSpeed); err != nil {
			return nil, err
		}
		laps = append(laps, l)
	}
	return laps, rows.Err()
}

func (s *SQLiteDB) GetTrackPoints(ctx context.Context, id string) ([]TrackPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT lap_index, point_index, time, latitude, longitude, altitude, heart_rate, distance, speed
	FROM trackpoints WHERE activity_id = ? ORDER BY lap_index, point_index`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := []TrackPoint{}
	for rows.Next() {
		var p TrackPoint
		var ts string
		var hr sql.NullInt64
		if err := rows.Scan(&p.LapIndex, &p.PointIndex, &ts, &p.Latitude, &p.Longitude,
			&p.Altitude, &hr, &p.Distance, &p.Speed); err != nil {
			return nil, err
		}
		if p.Time, err = parseTime(ts); err != nil {
			return nil, err
		}
		if hr.Valid {
			v := int(hr.Int64)
			p.HeartRate = &v
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *SQLiteDB) DeleteActivity(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrActivityNotFound
	}
	return nil
}

func (s *SQLiteDB) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByType: map[string]int{}}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(distance), 0), COALESCE(SUM(duration), 0) FROM activities`,
	).Scan(&stats.Total, &stats.TotalDistance, &stats.TotalDuration)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT activity_type, COUNT(*) FROM activities GROUP BY activity_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var activityType string
		var count int
		if err := rows.Scan(&activityType, &count); err != nil {
			return nil, err
		}
		stats.ByType[activityType] = count
	}

	return stats, rows.Err()
}

// sortColumns maps accepted SortBy values to columns.
var sortColumns = map[string]string{
	"":           "start_time",
	"start_time": "start_time",
	"distance":   "distance",
	"duration":   "duration",
	"max_speed":  "max_speed",
	"type":       "activity_type",
}

func (s *SQLiteDB) FilterActivities(ctx context.Context, filters ActivityFilters) ([]Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE 1=1`

	var args []any
	var conditions []string

	if filters.ActivityType != "" {
		conditions = append(conditions, "activity_type = ?")
		args = append(args, filters.ActivityType)
	}

	if filters.DateFrom != nil {
		conditions = append(conditions, "start_time >= ?")
		args = append(args, formatTime(*filters.DateFrom))
	}

	if filters.DateTo != nil {
		conditions = append(conditions, "start_time <= ?")
		args = append(args, formatTime(*filters.DateTo))
	}

	if filters.MinDistance > 0 {
		conditions = append(conditions, "distance >= ?")
		args = append(args, filters.MinDistance)
	}

	if filters.MaxDistance > 0 {
		conditions = append(conditions, "distance <= ?")
		args = append(args, filters.MaxDistance)
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	orderBy, ok := sortColumns[filters.SortBy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSort, filters.SortBy)
	}

	order := "DESC"
	if strings.EqualFold(filters.SortOrder, "asc") {
		order = "ASC"
	}

	query += fmt.Sprintf(" ORDER BY %s %s", orderBy, order)

	// SQLite only accepts OFFSET after LIMIT; -1 means no limit.
	switch {
	case filters.Limit > 0:
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	case filters.Offset > 0:
		query += " LIMIT -1"
	}
	if filters.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filters.Offset)
	}

	return s.queryActivities(ctx, query, args...)
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

var _ Database = (*SQLiteDB)(nil)
