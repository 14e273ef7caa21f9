package telegram

import "gopkg.in/telebot.v3"

// Client sends text into a Telegram chat and returns the id of the posted message.
type Client interface {
	SendMessage(chatID int64, text string, options *telebot.SendOptions) (int, error)
}
