// Package telegram adapts the Telegram Bot API to the transport interfaces
// the rest of the system consumes: it delivers fetched media, sends status
// text, renders quality keyboards, and feeds inbound updates to the router.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ytcourier/internal/bot"
	"ytcourier/internal/config"
	"ytcourier/internal/dispatch"
	"ytcourier/internal/logging"
	"ytcourier/internal/media"
	"ytcourier/internal/quality"
)

// Client wraps a bot API connection. It implements dispatch.Dispatcher and
// bot.Responder.
type Client struct {
	api         *tgbotapi.BotAPI
	logger      *slog.Logger
	pollTimeout int
}

// New authenticates against the Bot API.
func New(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("authenticate bot: %w", err)
	}
	log := logging.NewComponentLogger(logger, "telegram")
	log.Info("authenticated", logging.String("bot", api.Self.UserName))
	return &Client{
		api:         api,
		logger:      log,
		pollTimeout: cfg.Telegram.PollTimeout,
	}, nil
}

// Deliver uploads the fetched file to the chat in the requested mode. The
// file is read synchronously during the call; the caller may remove it as
// soon as Deliver returns.
func (c *Client) Deliver(ctx context.Context, chatID int64, item media.Item, kind dispatch.Kind, caption string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", dispatch.ErrTransport, err)
	}

	file := tgbotapi.FilePath(item.Path)
	var msg tgbotapi.Chattable
	switch kind {
	case dispatch.KindAudio:
		audio := tgbotapi.NewAudio(chatID, file)
		audio.Caption = caption
		msg = audio
	case dispatch.KindDocument:
		doc := tgbotapi.NewDocument(chatID, file)
		doc.Caption = caption
		msg = doc
	default:
		video := tgbotapi.NewVideo(chatID, file)
		video.Caption = caption
		msg = video
	}

	if _, err := c.api.Send(msg); err != nil {
		return classifyDeliverError(err)
	}
	return nil
}

// SendText sends a plain status message to the chat.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", dispatch.ErrTransport, err)
	}
	if _, err := c.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("%w: %v", dispatch.ErrTransport, err)
	}
	return nil
}

// Reply implements bot.Responder.
func (c *Client) Reply(ctx context.Context, chatID int64, text string) error {
	return c.SendText(ctx, chatID, text)
}

// PromptQuality sends the fixed quality choices as an inline keyboard whose
// callback payloads carry the request mode.
func (c *Client) PromptQuality(ctx context.Context, chatID int64, prompt string, mode bot.Mode) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", dispatch.ErrTransport, err)
	}
	msg := tgbotapi.NewMessage(chatID, prompt)
	msg.ReplyMarkup = qualityKeyboard(mode)
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("%w: %v", dispatch.ErrTransport, err)
	}
	return nil
}

// Listen long-polls for updates and feeds them to the router until ctx is
// cancelled. Each update is handled in its own goroutine so a long download
// run never stalls unrelated chats.
func (c *Client) Listen(ctx context.Context, router *bot.Router) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = c.pollTimeout
	updates := c.api.GetUpdatesChan(u)

	c.logger.Info("listening for updates")
	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go c.handleUpdate(ctx, router, update)
		}
	}
}

func (c *Client) handleUpdate(ctx context.Context, router *bot.Router, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		// Acknowledge first so the button stops spinning even if the
		// run takes minutes.
		if _, err := c.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			c.logger.Warn("callback ack failed", logging.Error(err))
		}
		ev := bot.Event{
			UserID:   cb.From.ID,
			Username: cb.From.UserName,
			Callback: cb.Data,
		}
		if cb.Message != nil {
			ev.ChatID = cb.Message.Chat.ID
		}
		router.HandleCallback(ctx, ev)
	case update.Message != nil:
		msg := update.Message
		if msg.From == nil {
			return
		}
		router.HandleMessage(ctx, bot.Event{
			UserID:   msg.From.ID,
			ChatID:   msg.Chat.ID,
			Username: msg.From.UserName,
			Text:     msg.Text,
		})
	}
}

// qualityKeyboard lays the fixed tags out two per row.
func qualityKeyboard(mode bot.Mode) tgbotapi.InlineKeyboardMarkup {
	tags := quality.Tags()
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(tags); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(tags[i].Label(), bot.EncodeCallback(mode, tags[i])),
		}
		if i+1 < len(tags) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(tags[i+1].Label(), bot.EncodeCallback(mode, tags[i+1])))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// classifyDeliverError maps Bot API failures onto the delivery taxonomy.
func classifyDeliverError(err error) error {
	lowered := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lowered, "request entity too large"),
		strings.Contains(lowered, "file is too big"):
		return fmt.Errorf("%w: %v", dispatch.ErrTooLarge, err)
	case strings.Contains(lowered, "chat not found"),
		strings.Contains(lowered, "bot was blocked"),
		strings.Contains(lowered, "user is deactivated"),
		strings.Contains(lowered, "have no rights"):
		return fmt.Errorf("%w: %v", dispatch.ErrRecipientUnreachable, err)
	default:
		return fmt.Errorf("%w: %v", dispatch.ErrTransport, err)
	}
}
