package telegram

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"nurturing_engine/internal/domain/messaging"
	"nurturing_engine/internal/domain/telegram"
)

var _ messaging.Gateway = (*RelayGateway)(nil)

// RelayGateway hands customer messages to the advisory desk's Telegram chat, where agents
// forward them to the customer's phone.
type RelayGateway struct {
	client telegram.Client
	chatID int64
	logger *logrus.Entry
}

func NewRelayGateway(client telegram.Client, chatID int64, logger *logrus.Entry) *RelayGateway {
	return &RelayGateway{
		client: client,
		chatID: chatID,
		logger: logger.WithField("component", "telegram_relay"),
	}
}

type sendOutcome struct {
	id  int
	err error
}

// Send relays text to the desk chat. The telebot client takes no context, so the call runs
// in its own goroutine and ctx expiry is reported as an error even if the send later lands.
func (g *RelayGateway) Send(ctx context.Context, phone, text string) (messaging.SendResult, error) {
	if err := ctx.Err(); err != nil {
		return messaging.SendResult{}, err
	}

	body := fmt.Sprintf("📨 To: %s\n\n%s", phone, text)
	done := make(chan sendOutcome, 1)
	go func() {
		id, err := g.client.SendMessage(g.chatID, body, &telebot.SendOptions{DisableWebPagePreview: true})
		done <- sendOutcome{id: id, err: err}
	}()

	select {
	case <-ctx.Done():
		g.logger.WithError(ctx.Err()).WithField("to", phone).Error("Telegram relay did not finish before the action deadline")
		return messaging.SendResult{}, ctx.Err()
	case out := <-done:
		if out.err != nil {
			g.logger.WithError(out.err).WithField("to", phone).Error("Failed to relay message to Telegram")
			return messaging.SendResult{Success: false, Error: out.err.Error()}, nil
		}
		return messaging.SendResult{Success: true, MessageID: strconv.Itoa(out.id)}, nil
	}
}
