// Package bot routes inbound chat events: whitelist gatekeeping, command
// handling, link collection, and quality-callback resolution. It speaks to
// the transport only through the Responder interface and starts download
// runs through the Downloader interface, so it carries no Telegram types.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ytcourier/internal/download"
	"ytcourier/internal/links"
	"ytcourier/internal/logging"
	"ytcourier/internal/quality"
	"ytcourier/internal/session"
	"ytcourier/internal/whitelist"
)

// Mode distinguishes the two pending-request shapes a quality prompt can
// resolve.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeBatch  Mode = "batch"
)

// Event is one inbound interaction, either a text message or a quality
// button press (Callback set, Text empty).
type Event struct {
	UserID   int64
	ChatID   int64
	Username string
	Text     string
	Callback string
}

// Responder sends the router's replies back to the chat. PromptQuality
// renders the fixed quality choices; the chosen tag comes back as a
// callback event carrying EncodeCallback data.
type Responder interface {
	Reply(ctx context.Context, chatID int64, text string) error
	PromptQuality(ctx context.Context, chatID int64, prompt string, mode Mode) error
}

// Downloader starts download runs and owns the runtime batch limit.
type Downloader interface {
	Run(ctx context.Context, req download.Request) download.Outcome
	SetBatchLimit(limit int) error
	BatchLimit() int
}

// Router wires gatekeeping, sessions, and the download pipeline together.
type Router struct {
	whitelist  *whitelist.Store
	sessions   *session.Store
	downloader Downloader
	responder  Responder
	logger     *slog.Logger
	adminID    int64
}

// New builds a Router.
func New(wl *whitelist.Store, sessions *session.Store, downloader Downloader, responder Responder, logger *slog.Logger) *Router {
	return &Router{
		whitelist:  wl,
		sessions:   sessions,
		downloader: downloader,
		responder:  responder,
		logger:     logging.NewComponentLogger(logger, "bot"),
		adminID:    wl.AdminID(),
	}
}

// HandleMessage processes one inbound text message.
func (r *Router) HandleMessage(ctx context.Context, ev Event) {
	r.track(ev)
	if !r.whitelist.IsAllowed(ev.UserID, ev.Username) {
		r.logger.Debug("ignored message from unauthorized user",
			logging.Int64("user_id", ev.UserID),
			logging.String("username", ev.Username))
		return
	}

	text := strings.TrimSpace(ev.Text)
	if strings.HasPrefix(text, "/") {
		r.handleCommand(ctx, ev, text)
		return
	}

	urls := links.Extract(text)
	switch {
	case len(urls) == 0:
		r.reply(ctx, ev.ChatID, "Send me one or more video links and I will fetch them for you. /help for details.")
	case len(urls) == 1:
		r.sessions.PutSingle(ev.UserID, urls[0])
		r.prompt(ctx, ev.ChatID, "Pick a quality:", ModeSingle)
	default:
		r.sessions.PutBatch(ev.UserID, urls)
		r.prompt(ctx, ev.ChatID, batchPrompt(len(urls)), ModeBatch)
	}
}

// HandleCallback processes one quality button press. The tag is validated
// before the pending request is consumed, so a malformed callback leaves
// the session intact.
func (r *Router) HandleCallback(ctx context.Context, ev Event) {
	r.track(ev)
	if !r.whitelist.IsAllowed(ev.UserID, ev.Username) {
		r.logger.Debug("ignored callback from unauthorized user",
			logging.Int64("user_id", ev.UserID))
		return
	}

	mode, tag, err := DecodeCallback(ev.Callback)
	if err != nil {
		r.logger.Warn("bad callback data",
			logging.String("data", ev.Callback),
			logging.Error(err))
		r.reply(ctx, ev.ChatID, "That choice is not valid. Send the link again.")
		return
	}

	var urls []string
	switch mode {
	case ModeSingle:
		url, ok := r.sessions.TakeSingle(ev.UserID)
		if !ok {
			r.reply(ctx, ev.ChatID, "That request has expired. Send the link again.")
			return
		}
		urls = []string{url}
	case ModeBatch:
		batch, ok := r.sessions.TakeBatch(ev.UserID)
		if !ok {
			r.reply(ctx, ev.ChatID, "That request has expired. Send the links again.")
			return
		}
		urls = batch
	}

	r.downloader.Run(ctx, download.Request{
		ChatID: ev.ChatID,
		UserID: ev.UserID,
		URLs:   urls,
		Tag:    tag,
	})
}

func (r *Router) track(ev Event) {
	if err := r.whitelist.TrackUsername(ev.UserID, ev.Username); err != nil {
		r.logger.Warn("username tracking failed", logging.Error(err))
	}
}

func (r *Router) reply(ctx context.Context, chatID int64, text string) {
	if err := r.responder.Reply(ctx, chatID, text); err != nil {
		r.logger.Warn("reply failed", logging.Error(err))
	}
}

func (r *Router) prompt(ctx context.Context, chatID int64, text string, mode Mode) {
	if err := r.responder.PromptQuality(ctx, chatID, text, mode); err != nil {
		r.logger.Warn("quality prompt failed", logging.Error(err))
	}
}

func batchPrompt(n int) string {
	return fmt.Sprintf("Got %d links. Pick a quality for the whole batch:", n)
}

func errInvalidCallback(data string) error {
	return fmt.Errorf("invalid callback data %q", data)
}

// EncodeCallback renders the callback payload carried by a quality button.
func EncodeCallback(mode Mode, tag quality.Tag) string {
	return string(mode) + "|" + string(tag)
}

// DecodeCallback parses a quality-button payload. The tag must be a member
// of the fixed quality set and the mode one of the two request shapes.
func DecodeCallback(data string) (Mode, quality.Tag, error) {
	rawMode, rawTag, ok := strings.Cut(data, "|")
	if !ok {
		return "", "", errInvalidCallback(data)
	}
	tag, err := quality.Parse(rawTag)
	if err != nil {
		return "", "", err
	}
	mode := Mode(rawMode)
	if mode != ModeSingle && mode != ModeBatch {
		return "", "", errInvalidCallback(data)
	}
	return mode, tag, nil
}
