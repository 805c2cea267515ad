package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sms-ride-workers/internal/models"
)

const insertRideQuery = `INSERT INTO lyft_rides (id, phone, ride_id, status, ride_type, created_at) VALUES ($1, $2, $3, $4, $5, $6)`

// RideRepository stores booked rides in lyft_rides.
type RideRepository struct {
	db *sql.DB
}

func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{db: db}
}

// CreateRide inserts ride, assigning ID and CreatedAt when they are empty.
func (r *RideRepository) CreateRide(ctx context.Context, ride *models.LyftRide) error {
	if ride.ID == "" {
		ride.ID = uuid.New().String()
	}
	if ride.CreatedAt.IsZero() {
		ride.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, insertRideQuery,
		ride.ID, ride.Phone, ride.RideID, ride.Status, ride.RideType, ride.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ride: %w", err)
	}
	return nil
}
