package messaging

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	domain "nurturing_engine/internal/domain/messaging"
)

var _ domain.Gateway = (*LogGateway)(nil)

// LogGateway is the dry-run provider: it logs every outbound message and reports success.
type LogGateway struct {
	logger *logrus.Entry
}

func NewLogGateway(logger *logrus.Entry) *LogGateway {
	return &LogGateway{logger: logger.WithField("component", "log_gateway")}
}

func (g *LogGateway) Send(_ context.Context, phone, text string) (domain.SendResult, error) {
	id := "dry-run-" + uuid.NewString()
	g.logger.WithFields(logrus.Fields{
		"to":         phone,
		"message_id": id,
	}).Infof("Outbound message (not sent): %s", text)
	return domain.SendResult{Success: true, MessageID: id}, nil
}
