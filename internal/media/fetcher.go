// Package media defines the fetch side of the download pipeline: the
// Fetcher port the orchestrator consumes and the error taxonomy per-item
// failures are classified into.
package media

import (
	"context"
	"errors"

	"ytcourier/internal/quality"
)

// Fetch failure kinds. Adapters wrap these sentinels so the orchestrator
// can classify per-item failures without knowing the tool behind them.
var (
	ErrNotFound          = errors.New("media not found")
	ErrFormatUnavailable = errors.New("requested format unavailable")
	ErrNetwork           = errors.New("network error")
	ErrCancelled         = errors.New("fetch cancelled")
)

// Item is a fetched media file. It is owned exclusively by the orchestrator
// from the moment Fetch returns until cleanup and must never be referenced
// afterwards.
type Item struct {
	Path  string
	Title string
	Size  int64
}

// Fetcher retrieves one remote media item into destDir under the given
// policy. Implementations must treat destDir as theirs alone for the
// duration of the call; the caller guarantees it is collision-free and
// removes it afterwards.
type Fetcher interface {
	Fetch(ctx context.Context, url string, policy quality.Policy, destDir string) (Item, error)
}

// FailureKind renders a fetch error as a short stable label for reports
// and the history journal.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not found"
	case errors.Is(err, ErrFormatUnavailable):
		return "format unavailable"
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	case errors.Is(err, ErrNetwork):
		return "network error"
	default:
		return "fetch failed"
	}
}
