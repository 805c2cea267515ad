package sendsmsreply

import "context"

const (
	StatusSent     = "sent"
	StatusDisabled = "disabled"
)

const inputSchema = `{
	"type": "object",
	"required": ["phone", "replyType"],
	"properties": {
		"phone": {"type": "string", "pattern": "^\\+?[0-9]{10,15}$"},
		"replyType": {"type": "string", "minLength": 1}
	}
}`

type Input struct {
	Phone     string `json:"phone"`
	ReplyType string `json:"replyType"`
}

type Output struct {
	MessageID string `json:"messageId,omitempty"`
	Status    string `json:"status"`
	Body      string `json:"body"`
}

// SMSSender delivers a text message; *aws.SNSClient satisfies it.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, body string) (string, error)
}
