// Package dispatch defines the delivery side of the download pipeline: the
// Dispatcher port the orchestrator hands fetched files to, and the error
// taxonomy delivery failures are classified into.
package dispatch

import (
	"context"
	"errors"

	"ytcourier/internal/media"
)

// Kind selects the delivery mode for a fetched item.
type Kind string

const (
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindDocument Kind = "document"
)

// Delivery failure kinds. Adapters wrap these sentinels so the orchestrator
// can classify per-item failures without knowing the transport behind them.
var (
	ErrTooLarge             = errors.New("file exceeds delivery size limit")
	ErrRecipientUnreachable = errors.New("recipient unreachable")
	ErrTransport            = errors.New("transport error")
)

// Dispatcher delivers fetched media and plain-text status messages to a
// chat. Deliver reads the item's file from disk; the file remains owned by
// the caller and may be removed as soon as Deliver returns.
type Dispatcher interface {
	Deliver(ctx context.Context, chatID int64, item media.Item, kind Kind, caption string) error
	SendText(ctx context.Context, chatID int64, text string) error
}

// FailureKind renders a delivery error as a short stable label for reports
// and the history journal.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, ErrTooLarge):
		return "too large"
	case errors.Is(err, ErrRecipientUnreachable):
		return "recipient unreachable"
	case errors.Is(err, ErrTransport):
		return "transport error"
	default:
		return "delivery failed"
	}
}
