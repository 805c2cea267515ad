// internal/workers/ride/request-ride/handler.go
package requestride

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"sms-ride-workers/internal/common/errors"
	"sms-ride-workers/internal/common/logger"
	"sms-ride-workers/internal/common/lyft"
	"sms-ride-workers/internal/common/metrics"
	"sms-ride-workers/internal/common/validation"
	"sms-ride-workers/internal/models"
)

const TaskType = "request-ride"

var schema = validation.MustCompile(inputSchema)

// RideService books rides; *lyft.Client satisfies it.
type RideService interface {
	RequestRide(ctx context.Context, phone string, rideType lyft.RideType, origin, destination lyft.Location) (*lyft.Ride, error)
}

// RideStore persists booked rides; *database.RideRepository satisfies it.
type RideStore interface {
	CreateRide(ctx context.Context, ride *models.LyftRide) error
}

type Handler struct {
	config     *Config
	rides      RideService
	store      RideStore
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, rides RideService, store RideStore, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		rides:      rides,
		store:      store,
		errHandler: errors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if result := schema.ValidateJSON(job.Variables); !result.Valid {
		h.fail(ctx, client, job, errors.NewInputValidationFailedError(result.Error()))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, errors.NewInputValidationFailedError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Phone == "" {
		return nil, errors.NewInputValidationFailedError("phone is required")
	}

	rideType := h.config.DefaultRideType
	if input.RideType != "" {
		if !lyft.ValidRideType(input.RideType) {
			return nil, errors.NewInvalidRideTypeError(input.RideType)
		}
		rideType = lyft.RideType(input.RideType)
	}

	ride, err := h.rides.RequestRide(ctx, input.Phone, rideType, input.Origin, input.Destination)
	if err != nil {
		if stderrors.Is(err, lyft.ErrInvalidRideType) {
			return nil, errors.NewInvalidRideTypeError(string(rideType))
		}
		return nil, errors.NewRideRequestFailedError(err)
	}
	metrics.RidesRequested.WithLabelValues(string(rideType)).Inc()

	record := &models.LyftRide{
		Phone:    input.Phone,
		RideID:   ride.RideID,
		Status:   ride.Status,
		RideType: string(rideType),
	}
	// The ride is already booked; a storage failure must not rerun RequestRide.
	if err := h.store.CreateRide(ctx, record); err != nil {
		h.logger.Error("booked ride could not be stored", map[string]interface{}{
			"phone":  record.Phone,
			"rideId": record.RideID,
			"error":  err.Error(),
		})
		return nil, errors.NewRidePersistFailedError(record.RideID, err)
	}

	h.logger.Info("ride requested", map[string]interface{}{
		"phone":    record.Phone,
		"rideId":   record.RideID,
		"status":   record.Status,
		"rideType": record.RideType,
	})

	return &Output{
		ID:        record.ID,
		Phone:     record.Phone,
		RideID:    record.RideID,
		Status:    record.Status,
		RideType:  record.RideType,
		CreatedAt: record.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
		"rideId": output.RideID,
	})
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, err)
}
