package telegram

import (
	"context"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const unauthorizedReply = "Error: you are not allowed to run this command."

// RegisterOpsHandlers registers the operator commands. Only adminTelegramID may run them.
func RegisterOpsHandlers(ctx context.Context, b *telebot.Bot, ops *OpsCommands, adminTelegramID int64, baseLogger *logrus.Entry) {
	handle := func(command string, run func(c telebot.Context) string) {
		b.Handle(command, func(c telebot.Context) error {
			handlerLogger := baseLogger.WithFields(logrus.Fields{
				"handler":   command,
				"sender_id": c.Sender().ID,
			})
			handlerLogger.Info("Command received")

			if c.Sender().ID != adminTelegramID {
				handlerLogger.Warn("Unauthorized access attempt")
				return c.Send(unauthorizedReply)
			}
			return c.Send(run(c), &telebot.SendOptions{DisableWebPagePreview: true})
		})
	}

	handle("/run_cycle", func(c telebot.Context) string { return ops.RunCycle(ctx) })
	handle("/trigger", func(c telebot.Context) string { return ops.Trigger(ctx, c.Args()) })
	handle("/rules", func(c telebot.Context) string { return ops.Rules() })
	handle("/rescore", func(c telebot.Context) string { return ops.Rescore(ctx, c.Args()) })
	handle("/history", func(c telebot.Context) string { return ops.History(ctx, c.Args()) })
}
