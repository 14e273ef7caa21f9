package messaging

import "context"

// SendResult is what a gateway reports back for one outbound message.
// No delivery-status callback is consumed beyond this.
type SendResult struct {
	Success   bool
	MessageID string
	Error     string
}

// Gateway defines an interface for sending outbound text messages to a phone number.
// This decouples the engine from the concrete transport (Telegram relay, HTTP gateway, log).
type Gateway interface {
	Send(ctx context.Context, phone, text string) (SendResult, error)
}
