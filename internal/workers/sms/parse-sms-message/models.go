// internal/workers/sms/parse-sms-message/models.go
package parsesmsmessage

import "sms-ride-workers/internal/smsutils"

const inputSchema = `{
	"type": "object",
	"required": ["phone", "message"],
	"properties": {
		"phone": {"type": "string", "minLength": 1},
		"message": {"type": "string"}
	}
}`

type Input struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type Output struct {
	Phone       string                      `json:"phone"`
	MessageType string                      `json:"messageType"`
	Params      *smsutils.RideRequestParams `json:"params,omitempty"`
	ReplyType   string                      `json:"replyType"`
}
