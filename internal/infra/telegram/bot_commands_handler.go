// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// OpsCommandMenu is published to Telegram so clients show the commands as suggestions.
var OpsCommandMenu = []telebot.Command{
	{Text: "run_cycle", Description: "Run a nurturing cycle now"},
	{Text: "trigger", Description: "Fire a behavior rule: <rule_id> <contact_id>"},
	{Text: "rules", Description: "List the loaded rules"},
	{Text: "rescore", Description: "Recompute score and tags: <contact_id>"},
	{Text: "history", Description: "Recent activity: <contact_id>"},
	{Text: "help", Description: "Show help"},
}

func RegisterBotCommands(b *telebot.Bot, adminTelegramID int64, baseLogger *logrus.Entry) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	if err := b.SetCommands(OpsCommandMenu); err != nil {
		startHelpLogger.WithError(err).Warn("Could not publish the command menu")
	}

	b.Handle("/start", func(c telebot.Context) error {
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", c.Sender().ID)
		logCtx.Info("Processing /start command")

		if c.Sender().ID == adminTelegramID {
			return c.Send("Hello " + c.Sender().FirstName + ", the nurturing engine is running. Use /help for commands.")
		}
		return c.Send("This bot is for the advisory desk operators only.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", c.Sender().ID)
		logCtx.Info("Processing /help command")

		if c.Sender().ID != adminTelegramID {
			return c.Send("No commands are available to you.")
		}
		return c.Send(HelpText(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}

func HelpText() string {
	var helpText strings.Builder
	helpText.WriteString("Operator commands:\n\n")
	helpText.WriteString("`/run_cycle`\n - Evaluate every rule now. Joins a cycle that is already running.\n\n")
	helpText.WriteString("`/trigger <rule_id> <contact_id>`\n - Fire a behavior rule for one contact.\n\n")
	helpText.WriteString("`/rules`\n - List the loaded rules in evaluation order.\n\n")
	helpText.WriteString("`/rescore <contact_id>`\n - Recompute and store score and tags.\n\n")
	helpText.WriteString("`/history <contact_id>`\n - Show the latest activity entries.\n\n")
	helpText.WriteString("`/help`\n - Show this message.")
	return helpText.String()
}
