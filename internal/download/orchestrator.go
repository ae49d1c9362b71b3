// Package download runs batch download requests: fetch each link in order,
// enforce the delivery size ceiling, hand the file to the dispatcher, and
// clean up the scratch space no matter how the item ends.
package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"ytcourier/internal/config"
	"ytcourier/internal/dispatch"
	"ytcourier/internal/history"
	"ytcourier/internal/logging"
	"ytcourier/internal/media"
	"ytcourier/internal/quality"
)

// ErrInvalidBatchLimit marks a rejected batch-limit update.
var ErrInvalidBatchLimit = errors.New("batch limit must be positive")

// Request is one approved download run: every link shares the chat and the
// quality choice.
type Request struct {
	ChatID int64
	UserID int64
	URLs   []string
	Tag    quality.Tag
}

// ItemFailure records why one link in a run produced no delivery.
type ItemFailure struct {
	URL    string
	Title  string
	Reason string
}

// Outcome summarizes a finished run. Requested counts the links actually
// processed; Truncated counts links dropped by the batch limit before
// processing started.
type Outcome struct {
	Requested int
	Succeeded int
	Failures  []ItemFailure
	Truncated int
}

// Orchestrator drives runs sequentially: one yt-dlp process and one upload
// at a time, in the order the links arrived.
type Orchestrator struct {
	fetcher    media.Fetcher
	dispatcher dispatch.Dispatcher
	journal    *history.Store
	logger     *slog.Logger

	downloadDir  string
	maxFileBytes int64
	batchLimit   atomic.Int64
}

// New builds an Orchestrator. journal may be nil; history recording is
// best-effort and never fails a run.
func New(cfg *config.Config, fetcher media.Fetcher, dispatcher dispatch.Dispatcher, journal *history.Store, logger *slog.Logger) *Orchestrator {
	o := &Orchestrator{
		fetcher:      fetcher,
		dispatcher:   dispatcher,
		journal:      journal,
		logger:       logging.NewComponentLogger(logger, "download"),
		downloadDir:  cfg.Paths.DownloadDir,
		maxFileBytes: cfg.Downloads.MaxFileBytes,
	}
	o.batchLimit.Store(int64(cfg.Downloads.MaxBatchSize))
	return o
}

// BatchLimit returns the current per-run link cap.
func (o *Orchestrator) BatchLimit() int {
	return int(o.batchLimit.Load())
}

// SetBatchLimit updates the per-run link cap. Takes effect for runs started
// after the call; the run that carries the admin command is unaffected.
func (o *Orchestrator) SetBatchLimit(limit int) error {
	if limit <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBatchLimit, limit)
	}
	o.batchLimit.Store(int64(limit))
	return nil
}

// Run processes the request and sends the user a start notice (for batches)
// and a final report. It returns the outcome for callers that want it; all
// user-visible reporting has already happened by then.
func (o *Orchestrator) Run(ctx context.Context, req Request) Outcome {
	urls := req.URLs
	outcome := Outcome{}

	if limit := o.BatchLimit(); len(urls) > limit {
		outcome.Truncated = len(urls) - limit
		urls = urls[:limit]
		o.logger.Warn("batch truncated",
			logging.Int64("chat_id", req.ChatID),
			logging.Int("limit", limit),
			logging.Int("skipped", outcome.Truncated))
	}
	outcome.Requested = len(urls)

	if len(urls) > 1 {
		notice := fmt.Sprintf("Downloading %d links at %s. Files arrive one by one.", len(urls), req.Tag.Label())
		if outcome.Truncated > 0 {
			notice += fmt.Sprintf(" %d links over the batch limit were skipped.", outcome.Truncated)
		}
		o.sendText(ctx, req.ChatID, notice)
	}

	started := time.Now()
	policy := req.Tag.Policy()
	kind := dispatch.KindVideo
	if policy.ExtractAudio {
		kind = dispatch.KindAudio
	}

	records := make([]history.Item, 0, len(urls))
	for _, url := range urls {
		title, size, err := o.processItem(ctx, req.ChatID, url, policy, kind)
		record := history.Item{URL: url, Title: title, SizeBytes: size}
		if err != nil {
			reason := failureReason(err)
			outcome.Failures = append(outcome.Failures, ItemFailure{URL: url, Title: title, Reason: reason})
			record.Status = history.ItemFailed
			record.Detail = reason
			o.logger.Warn("item failed",
				logging.String("url", url),
				logging.String("reason", reason),
				logging.Error(err))
		} else {
			outcome.Succeeded++
			record.Status = history.ItemDelivered
		}
		records = append(records, record)
	}

	o.sendText(ctx, req.ChatID, FormatReport(outcome))
	o.recordRun(req, outcome, records, started)
	return outcome
}

// processItem owns the fetched file for its whole lifetime: the scratch
// directory is removed on every exit path, success and failure alike.
func (o *Orchestrator) processItem(ctx context.Context, chatID int64, url string, policy quality.Policy, kind dispatch.Kind) (title string, size int64, err error) {
	scratch := filepath.Join(o.downloadDir, uuid.NewString())
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return "", 0, fmt.Errorf("%w: create scratch dir: %v", media.ErrNetwork, err)
	}
	defer func() {
		if removeErr := os.RemoveAll(scratch); removeErr != nil {
			o.logger.Warn("scratch cleanup failed",
				logging.String("dir", scratch),
				logging.Error(removeErr))
		}
	}()

	item, err := o.fetcher.Fetch(ctx, url, policy, scratch)
	if err != nil {
		return "", 0, err
	}

	if o.maxFileBytes > 0 && item.Size > o.maxFileBytes {
		o.sendText(ctx, chatID, fmt.Sprintf(
			"%s is %s, over the %s delivery limit. Direct link: %s",
			item.Title, humanize.Bytes(uint64(item.Size)), humanize.Bytes(uint64(o.maxFileBytes)), url))
		return item.Title, item.Size, fmt.Errorf("%w: %s", dispatch.ErrTooLarge, humanize.Bytes(uint64(item.Size)))
	}

	if err := o.dispatcher.Deliver(ctx, chatID, item, kind, item.Title); err != nil {
		return item.Title, item.Size, err
	}
	return item.Title, item.Size, nil
}

func (o *Orchestrator) sendText(ctx context.Context, chatID int64, text string) {
	if err := o.dispatcher.SendText(ctx, chatID, text); err != nil {
		o.logger.Warn("status message failed", logging.Error(err))
	}
}

func (o *Orchestrator) recordRun(req Request, outcome Outcome, items []history.Item, started time.Time) {
	if o.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := o.journal.RecordRun(ctx, history.Run{
		ChatID:     req.ChatID,
		UserID:     req.UserID,
		Quality:    string(req.Tag),
		Requested:  outcome.Requested,
		Succeeded:  outcome.Succeeded,
		Failed:     len(outcome.Failures),
		StartedAt:  started,
		FinishedAt: time.Now(),
		Items:      items,
	})
	if err != nil {
		o.logger.Warn("history write failed", logging.Error(err))
	}
}

// failureReason classifies err into the fetch taxonomy first, then the
// delivery taxonomy.
func failureReason(err error) string {
	switch {
	case errors.Is(err, dispatch.ErrTooLarge),
		errors.Is(err, dispatch.ErrRecipientUnreachable),
		errors.Is(err, dispatch.ErrTransport):
		return dispatch.FailureKind(err)
	default:
		return media.FailureKind(err)
	}
}
