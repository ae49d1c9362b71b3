// Package ytdlp fetches media by executing the yt-dlp binary.
package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"ytcourier/internal/config"
	"ytcourier/internal/logging"
	"ytcourier/internal/media"
	"ytcourier/internal/quality"
)

// Fetcher shells out to yt-dlp for each item. One process per fetch; the
// caller provides a collision-free destination directory.
type Fetcher struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// New builds a Fetcher from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		binary:  cfg.Downloads.YtDlpBinary,
		timeout: time.Duration(cfg.Downloads.FetchTimeout) * time.Second,
		logger:  logging.NewComponentLogger(logger, "ytdlp"),
	}
}

// Fetch downloads url into destDir under the given policy and returns the
// resulting file. yt-dlp prints the title and the final file path (after
// any postprocessing move) which is all the metadata the pipeline needs.
func (f *Fetcher) Fetch(ctx context.Context, url string, policy quality.Policy, destDir string) (media.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	args := []string{
		"--no-playlist",
		"--no-warnings",
		"--no-progress",
		"--no-simulate",
		"--print", "title",
		"--print", "after_move:filepath",
		"-f", policy.Format,
		"-o", filepath.Join(destDir, "%(title)s.%(ext)s"),
	}
	if policy.ExtractAudio {
		args = append(args, "-x", "--audio-format", policy.AudioCodec, "--audio-quality", policy.AudioBitrate)
	}
	args = append(args, url)

	cmd := exec.CommandContext(ctx, f.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	if runErr != nil {
		return media.Item{}, f.classify(ctx, url, runErr, stderr.String())
	}

	title, path, err := parseOutput(stdout.String())
	if err != nil {
		return media.Item{}, fmt.Errorf("%w: %v", media.ErrNetwork, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return media.Item{}, fmt.Errorf("%w: stat output file: %v", media.ErrNetwork, err)
	}

	f.logger.Debug("fetched item",
		logging.String("url", url),
		logging.String("title", title),
		logging.Int64("size_bytes", info.Size()),
		logging.Duration("elapsed", time.Since(start)))

	return media.Item{Path: path, Title: title, Size: info.Size()}, nil
}

// parseOutput reads the two --print lines: title first, file path second.
func parseOutput(out string) (title, path string, err error) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		return "", "", fmt.Errorf("unexpected yt-dlp output: %q", out)
	}
	title = strings.TrimSpace(lines[len(lines)-2])
	path = strings.TrimSpace(lines[len(lines)-1])
	if path == "" {
		return "", "", errors.New("yt-dlp reported no output file")
	}
	if title == "" {
		title = filepath.Base(path)
	}
	return title, path, nil
}

func (f *Fetcher) classify(ctx context.Context, url string, runErr error, stderr string) error {
	f.logger.Warn("yt-dlp failed",
		logging.String("url", url),
		logging.Error(runErr),
		logging.String("stderr", truncate(stderr, 400)))

	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", media.ErrCancelled, ctx.Err())
	}

	lowered := strings.ToLower(stderr)
	switch {
	case strings.Contains(lowered, "requested format is not available"),
		strings.Contains(lowered, "no video formats"):
		return fmt.Errorf("%w: %s", media.ErrFormatUnavailable, firstLine(stderr))
	case strings.Contains(lowered, "video unavailable"),
		strings.Contains(lowered, "private video"),
		strings.Contains(lowered, "404"),
		strings.Contains(lowered, "not found"),
		strings.Contains(lowered, "does not exist"):
		return fmt.Errorf("%w: %s", media.ErrNotFound, firstLine(stderr))
	default:
		return fmt.Errorf("%w: %s", media.ErrNetwork, firstLine(stderr))
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	if s == "" {
		return "yt-dlp exited with an error"
	}
	return s
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
