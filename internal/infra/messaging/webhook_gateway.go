// Package messaging holds the outbound gateways the dispatcher sends customer messages
// through.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	domain "nurturing_engine/internal/domain/messaging"
)

const maxErrorBody = 1 << 10

type webhookRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

type webhookResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Error     string `json:"error"`
}

var _ domain.Gateway = (*WebhookGateway)(nil)

// WebhookGateway posts messages as JSON to a WhatsApp-style HTTP provider.
type WebhookGateway struct {
	url    string
	token  string
	client *http.Client
	logger *logrus.Entry
}

func NewWebhookGateway(url, token string, client *http.Client, logger *logrus.Entry) *WebhookGateway {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &WebhookGateway{
		url:    url,
		token:  token,
		client: client,
		logger: logger.WithField("component", "webhook_gateway"),
	}
}

// Send returns an error for transport failures. A provider that answers but refuses the
// message yields Success=false with the provider's reason.
func (g *WebhookGateway) Send(ctx context.Context, phone, text string) (domain.SendResult, error) {
	body, err := json.Marshal(webhookRequest{To: phone, Text: text})
	if err != nil {
		return domain.SendResult{}, fmt.Errorf("encoding webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return domain.SendResult{}, fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.SendResult{}, fmt.Errorf("calling messaging webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		g.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(snippet),
		}).Warn("Messaging provider rejected message")
		return domain.SendResult{Success: false, Error: fmt.Sprintf("provider returned %s", resp.Status)}, nil
	}

	var out webhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && err != io.EOF {
		return domain.SendResult{}, fmt.Errorf("decoding webhook response: %w", err)
	}
	if out.Error != "" || out.Status == "failed" {
		return domain.SendResult{Success: false, MessageID: out.MessageID, Error: out.Error}, nil
	}
	return domain.SendResult{Success: true, MessageID: out.MessageID}, nil
}
