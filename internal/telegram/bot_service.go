// Package telegram adapts the Telegram Bot API to the conversation engine:
// updates become inbound events, notifications become text sends.
package telegram

import (
	"log"
	"strconv"

	"tulumreporta/backend/internal/bot"
	"tulumreporta/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotService receives Telegram updates and feeds the dispatcher.
type BotService struct {
	BotAPI     *tgbotapi.BotAPI
	Dispatcher *bot.Dispatcher
}

// NewBotService authorizes the bot and wires it to the dispatcher.
func NewBotService(token string, dispatcher *bot.Dispatcher) (*BotService, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	api.Debug = false
	log.Printf("✅ Authorized on account %s", api.Self.UserName)

	return &BotService{BotAPI: api, Dispatcher: dispatcher}, nil
}

// Run is the main loop for receiving Telegram updates. Each update is
// acknowledged by the long-poll cycle itself; handing the event to the
// dispatcher is all that happens before the next poll.
func (s *BotService) Run() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.BotAPI.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}
		s.Dispatcher.IncomingCh <- eventFromMessage(update.UpdateID, update.Message)
	}
}

// eventFromMessage normalizes one Telegram message into an InboundEvent.
func eventFromMessage(updateID int, msg *tgbotapi.Message) models.InboundEvent {
	ev := models.InboundEvent{
		ReporterID: strconv.FormatInt(msg.Chat.ID, 10),
		DeliveryID: strconv.Itoa(updateID),
		Kind:       models.EventText,
		Text:       msg.Text,
	}

	switch {
	case msg.Location != nil:
		ev.Kind = models.EventKindLocation
		loc := &models.EventLocation{
			Lat: msg.Location.Latitude,
			Lon: msg.Location.Longitude,
		}
		if msg.Venue != nil {
			loc.Label = msg.Venue.Address
			if loc.Label == "" {
				loc.Label = msg.Venue.Title
			}
		}
		ev.Location = loc
	case msg.Photo != nil:
		largest := msg.Photo[len(msg.Photo)-1]
		ev.Kind = models.EventImage
		ev.ImageRef = largest.FileID
		ev.Text = msg.Caption
	}

	return ev
}

// Notifier sends Markdown text messages through the bot.
type Notifier struct {
	BotAPI *tgbotapi.BotAPI
}

// Send delivers text to the chat identified by recipientID.
func (n *Notifier) Send(recipientID, text string) error {
	chatID, err := strconv.ParseInt(recipientID, 10, 64)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err = n.BotAPI.Send(msg)
	return err
}
