package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sms-ride-workers/internal/models"
)

func TestRideRepository_CreateRide(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ride := &models.LyftRide{
		Phone:    "+15551234567",
		RideID:   "ride-42",
		Status:   models.RideStatusPending,
		RideType: "lyft_line",
	}

	mock.ExpectExec(regexp.QuoteMeta(insertRideQuery)).
		WithArgs(sqlmock.AnyArg(), "+15551234567", "ride-42", "pending", "lyft_line", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = NewRideRepository(db).CreateRide(context.Background(), ride)
	require.NoError(t, err)

	assert.NotEmpty(t, ride.ID)
	assert.False(t, ride.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRideRepository_CreateRide_KeepsGivenID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	createdAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	ride := &models.LyftRide{ID: "fixed-id", Phone: "+1", RideID: "r", Status: "pending", RideType: "lyft", CreatedAt: createdAt}

	mock.ExpectExec(regexp.QuoteMeta(insertRideQuery)).
		WithArgs("fixed-id", "+1", "r", "pending", "lyft", createdAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, NewRideRepository(db).CreateRide(context.Background(), ride))
	assert.Equal(t, "fixed-id", ride.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRideRepository_CreateRide_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbErr := errors.New("connection reset")
	mock.ExpectExec(regexp.QuoteMeta(insertRideQuery)).WillReturnError(dbErr)

	err = NewRideRepository(db).CreateRide(context.Background(), &models.LyftRide{Phone: "+1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "insert ride")
}

func TestPostgresClient_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS lyft_rides")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	client := &PostgresClient{DB: db}
	require.NoError(t, client.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
