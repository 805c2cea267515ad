// internal/workers/ride/estimate-ride/handler.go
package estimateride

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"sms-ride-workers/internal/common/errors"
	"sms-ride-workers/internal/common/logger"
	"sms-ride-workers/internal/common/lyft"
	"sms-ride-workers/internal/common/metrics"
)

const TaskType = "estimate-ride"

// Estimator quotes rides; *lyft.Client satisfies it.
type Estimator interface {
	EstimateRide(ctx context.Context, rideType lyft.RideType, origin, destination lyft.Location) (*lyft.Estimate, error)
}

type Handler struct {
	config     *Config
	estimator  Estimator
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, estimator Estimator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		estimator:  estimator,
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

// Execute returns the quote for the requested ride type. A ride service that
// has no quote for the route is not an error; HasEstimate is false instead.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	rideType := h.config.DefaultRideType
	if input.RideType != "" {
		if !lyft.ValidRideType(input.RideType) {
			return nil, errors.NewInvalidRideTypeError(input.RideType)
		}
		rideType = lyft.RideType(input.RideType)
	}

	estimate, err := h.estimator.EstimateRide(ctx, rideType, input.Origin, input.Destination)
	if err != nil {
		if stderrors.Is(err, lyft.ErrInvalidRideType) {
			return nil, errors.NewInvalidRideTypeError(string(rideType))
		}
		return nil, errors.NewRideEstimateFailedError(err)
	}

	output := &Output{RideType: string(rideType)}
	for _, ce := range estimate.CostEstimates {
		if ce.RideType != string(rideType) {
			continue
		}
		output.EstimatedCostCentsMin = ce.EstimatedCostCentsMin
		output.EstimatedCostCentsMax = ce.EstimatedCostCentsMax
		output.EstimatedDurationSeconds = ce.EstimatedDurationSeconds
		output.HasEstimate = true
		break
	}

	if !output.HasEstimate {
		h.logger.Warn("no estimate for ride type", map[string]interface{}{
			"phone":    input.Phone,
			"rideType": string(rideType),
		})
	}
	return output, nil
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
		"jobKey":      job.Key,
		"hasEstimate": output.HasEstimate,
	})
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, err)
}
