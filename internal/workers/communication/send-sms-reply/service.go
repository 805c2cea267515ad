package sendsmsreply

import (
	"context"

	"sms-ride-workers/internal/common/errors"
	"sms-ride-workers/internal/common/logger"
	"sms-ride-workers/internal/common/metrics"
	"sms-ride-workers/internal/common/validation"
	"sms-ride-workers/internal/smsutils"
)

var schema = validation.MustCompile(inputSchema)

type Service struct {
	config *Config
	sender SMSSender
	logger logger.Logger
}

// NewService builds the reply service. sender may be nil when replies are
// disabled.
func NewService(config *Config, sender SMSSender, log logger.Logger) *Service {
	return &Service{
		config: config,
		sender: sender,
		logger: log,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if result := schema.Validate(input); !result.Valid {
		return nil, errors.NewInputValidationFailedError(result.Error())
	}

	body, ok := smsutils.Reply(input.ReplyType)
	if !ok {
		return nil, errors.NewReplyTypeUnknownError(input.ReplyType)
	}

	if !s.config.Enabled || s.sender == nil {
		metrics.SMSRepliesSent.WithLabelValues(StatusDisabled).Inc()
		s.logger.Info("sms replies disabled, skipping send", map[string]interface{}{
			"phone":     input.Phone,
			"replyType": input.ReplyType,
		})
		return &Output{Status: StatusDisabled, Body: body}, nil
	}

	messageID, err := s.sender.SendSMS(ctx, input.Phone, body)
	if err != nil {
		metrics.SMSRepliesSent.WithLabelValues("failed").Inc()
		return nil, errors.NewSMSSendFailedError(err)
	}
	metrics.SMSRepliesSent.WithLabelValues(StatusSent).Inc()

	s.logger.Info("sms reply sent", map[string]interface{}{
		"phone":     input.Phone,
		"replyType": input.ReplyType,
		"messageId": messageID,
	})

	return &Output{MessageID: messageID, Status: StatusSent, Body: body}, nil
}
