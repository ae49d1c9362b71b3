package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"ytcourier/internal/logging"
	"ytcourier/internal/whitelist"
)

const helpText = `Send me one or more video links (one per line) and pick a quality.
Numeric choices download video; "Audio (mp3)" extracts the soundtrack.

Commands:
/help - this message

Admin commands:
/allow <id|@username> - whitelist a user
/deny <id|@username> - remove a user from the whitelist
/listallowed - show the whitelist
/setbatchlimit <n> - cap links per batch`

func (r *Router) handleCommand(ctx context.Context, ev Event, text string) {
	fields := strings.Fields(text)
	command := strings.ToLower(fields[0])
	args := fields[1:]

	// Commands may carry a @botname suffix in group chats.
	if idx := strings.IndexByte(command, '@'); idx > 0 {
		command = command[:idx]
	}

	switch command {
	case "/start", "/help":
		r.reply(ctx, ev.ChatID, helpText)
	case "/allow":
		r.adminCommand(ctx, ev, func() { r.cmdAllow(ctx, ev.ChatID, args) })
	case "/deny":
		r.adminCommand(ctx, ev, func() { r.cmdDeny(ctx, ev.ChatID, args) })
	case "/listallowed":
		r.adminCommand(ctx, ev, func() { r.cmdListAllowed(ctx, ev.ChatID) })
	case "/setbatchlimit":
		r.adminCommand(ctx, ev, func() { r.cmdSetBatchLimit(ctx, ev.ChatID, args) })
	default:
		r.reply(ctx, ev.ChatID, "Unknown command. /help for the list.")
	}
}

// adminCommand runs fn only for the administrator; everyone else gets an
// authorization reply and no state changes.
func (r *Router) adminCommand(ctx context.Context, ev Event, fn func()) {
	if ev.UserID != r.adminID {
		r.logger.Info("admin command refused",
			logging.Int64("user_id", ev.UserID),
			logging.String("text", ev.Text))
		r.reply(ctx, ev.ChatID, "Only the administrator can use this command.")
		return
	}
	fn()
}

func (r *Router) cmdAllow(ctx context.Context, chatID int64, args []string) {
	if len(args) != 1 {
		r.reply(ctx, chatID, "Usage: /allow <id|@username>")
		return
	}
	ident, err := r.whitelist.Add(args[0])
	if err != nil {
		r.reply(ctx, chatID, "Could not whitelist: "+err.Error())
		return
	}
	r.reply(ctx, chatID, fmt.Sprintf("Whitelisted %s.", ident))
}

func (r *Router) cmdDeny(ctx context.Context, chatID int64, args []string) {
	if len(args) != 1 {
		r.reply(ctx, chatID, "Usage: /deny <id|@username>")
		return
	}
	ident, err := r.whitelist.Remove(args[0])
	if err != nil {
		if errors.Is(err, whitelist.ErrNotFound) {
			r.reply(ctx, chatID, fmt.Sprintf("%s is not whitelisted.", strings.TrimSpace(args[0])))
			return
		}
		r.reply(ctx, chatID, "Could not remove: "+err.Error())
		return
	}
	r.reply(ctx, chatID, fmt.Sprintf("Removed %s from the whitelist.", ident))
}

func (r *Router) cmdListAllowed(ctx context.Context, chatID int64) {
	ids, usernames := r.whitelist.Snapshot()

	var b strings.Builder
	b.WriteString("Whitelisted ids:")
	if len(ids) == 0 {
		b.WriteString(" none")
	}
	for _, id := range ids {
		fmt.Fprintf(&b, "\n- %d", id)
	}

	b.WriteString("\nWhitelisted usernames:")
	if len(usernames) == 0 {
		b.WriteString(" none")
	}
	names := make([]string, 0, len(usernames))
	for name := range usernames {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if id := usernames[name]; id != nil {
			fmt.Fprintf(&b, "\n- @%s (%d)", name, *id)
		} else {
			fmt.Fprintf(&b, "\n- @%s (not seen yet)", name)
		}
	}
	r.reply(ctx, chatID, b.String())
}

func (r *Router) cmdSetBatchLimit(ctx context.Context, chatID int64, args []string) {
	if len(args) != 1 {
		r.reply(ctx, chatID, fmt.Sprintf("Usage: /setbatchlimit <n>. Current limit: %d.", r.downloader.BatchLimit()))
		return
	}
	limit, err := strconv.Atoi(args[0])
	if err != nil {
		r.reply(ctx, chatID, fmt.Sprintf("%q is not a number.", args[0]))
		return
	}
	if err := r.downloader.SetBatchLimit(limit); err != nil {
		r.reply(ctx, chatID, "Batch limit must be a positive number.")
		return
	}
	r.reply(ctx, chatID, fmt.Sprintf("Batch limit set to %d.", limit))
}
