// internal/workers/sms/parse-sms-message/handler.go
package parsesmsmessage

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"sms-ride-workers/internal/common/errors"
	"sms-ride-workers/internal/common/logger"
	"sms-ride-workers/internal/common/metrics"
	"sms-ride-workers/internal/common/validation"
	"sms-ride-workers/internal/smsutils"
)

const TaskType = "parse-sms-message"

var schema = validation.MustCompile(inputSchema)

type Handler struct {
	config     *Config
	classifier *smsutils.Classifier
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, geocoder smsutils.Geocoder, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		classifier: smsutils.NewClassifier(geocoder),
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

// Execute classifies the message. Unrecognized text is a normal outcome;
// only geocoding failures of a ride request are errors.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if result := schema.Validate(input); !result.Valid {
		return nil, errors.NewInputValidationFailedError(result.Error())
	}

	intent, err := h.classifier.Classify(ctx, input.Message)
	if err != nil {
		var classErr *smsutils.ClassificationError
		if !stderrors.As(err, &classErr) {
			return nil, errors.NewGeocodeServiceUnavailableError(err)
		}

		metrics.SMSMessagesClassified.WithLabelValues(string(classErr.Kind)).Inc()
		h.logger.Warn("ride request could not be resolved", map[string]interface{}{
			"phone": input.Phone,
			"kind":  string(classErr.Kind),
			"error": err.Error(),
		})

		if classErr.Kind == smsutils.ZeroResults {
			return nil, errors.NewGeocodeZeroResultsError(err)
		}
		return nil, errors.NewGeocodeServiceUnavailableError(err)
	}

	metrics.SMSMessagesClassified.WithLabelValues(string(intent.Kind)).Inc()
	h.logger.Debug("message classified", map[string]interface{}{
		"phone": input.Phone,
		"kind":  string(intent.Kind),
	})

	return &Output{
		Phone:       input.Phone,
		MessageType: string(intent.Kind),
		Params:      intent.Params,
		ReplyType:   smsutils.ReplyTypeOf(intent, nil),
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
		"jobKey":      job.Key,
		"messageType": output.MessageType,
	})
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, err)
}
