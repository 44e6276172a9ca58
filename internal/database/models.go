// internal/database/models.go
package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/dominikstraub/Waddle/internal/models"
)

var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrInvalidSort      = errors.New("unsupported sort field")
)

// ContentHash identifies an imported file by its bytes, so a renamed copy
// is still recognised and a new file reusing an old name is not.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type Activity struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	ContentHash    string    `json:"content_hash"`
	StartTime      time.Time `json:"start_time"`
	ActivityType   string    `json:"activity_type"`
	LapCount       int       `json:"lap_count"`
	PointCount     int       `json:"point_count"`
	Duration       float64   `json:"duration"` // seconds
	Distance       float64   `json:"distance"` // meters
	MaxSpeed       float64   `json:"max_speed"`
	AvgSpeed       float64   `json:"avg_speed"`
	MaxHeartRate   int       `json:"max_heart_rate"`
	AvgHeartRate   int       `json:"avg_heart_rate"`
	ElevationGain  float64   `json:"elevation_gain"`
	ElevationLoss  float64   `json:"elevation_loss"`
	StartLatitude  float64   `json:"start_latitude"`
	StartLongitude float64   `json:"start_longitude"`
	CreatedAt      time.Time `json:"created_at"`
}

type Lap struct {
	LapIndex      int     `json:"lap_index"`
	PointCount    int     `json:"point_count"`
	TotalDistance float64 `json:"total_distance"`
	TotalTime     float64 `json:"total_time"`
	MaxSpeed      float64 `json:"max_speed"`
}

type TrackPoint struct {
	LapIndex   int       `json:"lap_index"`
	PointIndex int       `json:"point_index"`
	Time       time.Time `json:"time"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Altitude   float64   `json:"altitude"`
	HeartRate  *int      `json:"heart_rate,omitempty"`
	Distance   float64   `json:"distance"`
	Speed      float64   `json:"speed"`
}

type Stats struct {
	Total         int            `json:"total"`
	TotalDistance float64        `json:"total_distance"`
	TotalDuration float64        `json:"total_duration"`
	ByType        map[string]int `json:"by_type"`
}

type ActivityFilters struct {
	ActivityType string
	DateFrom     *time.Time
	DateTo       *time.Time
	MinDistance  float64
	MaxDistance  float64
	Limit        int
	Offset       int
	SortBy       string
	SortOrder    string
}

// Database interface
type Database interface {
	// Activities
	CreateActivity(ctx context.Context, source, contentHash string, activity *models.Activity) (string, error)
	GetActivities(ctx context.Context, limit, offset int) ([]Activity, error)
	GetActivity(ctx context.Context, id string) (*Activity, error)
	GetLaps(ctx context.Context, id string) ([]Lap, error)
	GetTrackPoints(ctx context.Context, id string) ([]TrackPoint, error)
	DeleteActivity(ctx context.Context, id string) error
	ContentExists(ctx context.Context, contentHash string) (bool, error)

	// Stats
	GetStats(ctx context.Context) (*Stats, error)

	// Search and filter
	FilterActivities(ctx context.Context, filters ActivityFilters) ([]Activity, error)

	// Close connection
	Close() error
}
