// Package download fetches remote files to disk, resuming partial
// downloads with HTTP range requests.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// chunkSize is the streaming copy buffer size.
const chunkSize = 1024

// Downloader streams remote files to local paths.
type Downloader struct {
	client *http.Client
	logger *slog.Logger
}

// New creates a Downloader. A nil client or logger falls back to the
// defaults.
func New(client *http.Client, logger *slog.Logger) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{client: client, logger: logger}
}

// Fetch downloads url to destPath. An existing complete file is left
// untouched; a shorter one is resumed with a range request appending only
// the missing bytes; a longer one is treated as corrupt, deleted, and
// downloaded from scratch. A partial file left by an interrupted call is
// picked up correctly by the next one.
func (d *Downloader) Fetch(ctx context.Context, url, destPath string, showProgress bool) error {
	resp, err := d.get(ctx, url, 0)
	if err != nil {
		return err
	}
	total := resp.ContentLength

	var existing int64
	info, statErr := os.Stat(destPath)
	switch {
	case errors.Is(statErr, fs.ErrNotExist):
		d.logger.Info("starting download", "path", destPath)
	case statErr != nil:
		resp.Body.Close()
		return fmt.Errorf("stat %s: %w", destPath, statErr)
	case total > 0 && info.Size() == total:
		d.logger.Info("download complete", "path", destPath)
		resp.Body.Close()
		return nil
	case total > 0 && info.Size() < total:
		d.logger.Info("resuming download", "path", destPath, "offset", info.Size())
		resp.Body.Close()
		resp, err = d.get(ctx, url, info.Size())
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusPartialContent {
			existing = info.Size()
		} else {
			// server ignored the range header, take the full body
			d.logger.Warn("range request not honored, restarting", "path", destPath)
			if err := os.Remove(destPath); err != nil {
				resp.Body.Close()
				return fmt.Errorf("remove partial file: %w", err)
			}
		}
	default:
		// local file larger than the remote, or remote size unknown:
		// the copy on disk cannot be trusted
		d.logger.Error("local file inconsistent with remote, restarting",
			"path", destPath, "local", info.Size(), "remote", total)
		if err := os.Remove(destPath); err != nil {
			resp.Body.Close()
			return fmt.Errorf("remove corrupt file: %w", err)
		}
	}
	defer resp.Body.Close()

	dest, err := os.OpenFile(destPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", destPath, err)
	}
	defer dest.Close()

	bar := newBar(total, existing, destPath, showProgress)
	defer bar.Close()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(io.MultiWriter(dest, bar), resp.Body, buf); err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	return nil
}

func (d *Downloader) get(ctx context.Context, url string, offset int64) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}
	return resp, nil
}

// newBar builds a byte-scaled progress bar pre-seeded with the bytes
// already on disk. An unknown or zero total renders as an indeterminate
// spinner instead of dividing by the total.
func newBar(total, existing int64, desc string, show bool) *progressbar.ProgressBar {
	if total <= 0 {
		total = -1
	}
	if !show || !term.IsTerminal(int(os.Stderr.Fd())) {
		return progressbar.DefaultBytesSilent(total, desc)
	}
	bar := progressbar.DefaultBytes(total, desc)
	_ = bar.Add64(existing)
	return bar
}
