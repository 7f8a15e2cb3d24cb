// Package download fetches the SteamCMD archive over HTTP.
//
// Downloads are retried with exponential backoff, written to a temporary
// file and renamed into place, so the destination path only ever holds a
// complete archive. When a Verification is configured the archive is
// checked before Download returns.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/CyberAndrii/setup-steamcmd/internal/logging"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 5 * time.Minute
	// DefaultRetries is the default number of download retries
	DefaultRetries = 3
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "setup-steamcmd/1.0"
)

// StatusError reports a non-200 response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.Code, e.URL)
}

// retryable reports whether a status is worth another attempt.
func (e *StatusError) retryable() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// Downloader handles HTTP downloads with retry logic.
type Downloader struct {
	client    *http.Client
	userAgent string
	retries   int
	baseDelay time.Duration
	progress  io.Writer
	verifier  *Verifier
	log       logging.Logger
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithProgress renders a progress bar to w while downloading.
func WithProgress(w io.Writer) Option {
	return func(d *Downloader) { d.progress = w }
}

// WithVerification checks every downloaded archive against v.
func WithVerification(v Verification) Option {
	return func(d *Downloader) {
		if !v.Empty() {
			d.verifier = NewVerifier(v, d)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(d *Downloader) { d.log = logging.OrNop(l) }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(d *Downloader) { d.userAgent = ua }
}

// NewDownloader creates a new downloader.
func NewDownloader(opts ...Option) *Downloader {
	d := &Downloader{
		client: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent: DefaultUserAgent,
		retries:   DefaultRetries,
		baseDelay: time.Second,
		log:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download fetches url to destPath, verifies it if configured, and returns
// the local path.
func (d *Downloader) Download(ctx context.Context, url, destPath string) (string, error) {
	d.log.Info("Downloading", "url", url, "dest", destPath)

	if err := d.DownloadToFile(ctx, url, destPath); err != nil {
		return "", err
	}

	if d.verifier != nil {
		method, err := d.verifier.Verify(ctx, destPath)
		if err != nil {
			os.Remove(destPath)
			return "", fmt.Errorf("verify %s: %w", filepath.Base(destPath), err)
		}
		d.log.Info("Archive verified", "method", method.String())
	}

	return destPath, nil
}

// DownloadToFile downloads a URL to a specific file path.
func (d *Downloader) DownloadToFile(ctx context.Context, url, destPath string) error {
	var lastErr error

	for attempt := 0; attempt <= d.retries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt > 0 {
			// 1x, 2x, 4x the base delay
			backoff := d.baseDelay * time.Duration(1<<uint(attempt-1))
			d.log.Warn("Retrying download", "attempt", attempt, "backoff", backoff, "error", lastErr)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := d.downloadOnce(ctx, url, destPath)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.retryable() {
			return fmt.Errorf("download %s: %w", url, err)
		}
	}

	return fmt.Errorf("download failed after %d retries: %w", d.retries, lastErr)
}

func (d *Downloader) downloadOnce(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: url, Code: resp.StatusCode}
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	tmpPath := destPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	var w io.Writer = tmpFile
	var bar *progressbar.ProgressBar
	if d.progress != nil {
		// -1 renders a spinner when the server sends no Content-Length.
		total := resp.ContentLength
		if total <= 0 {
			total = -1
		}
		bar = progressbar.NewOptions64(total,
			progressbar.OptionSetWriter(d.progress),
			progressbar.OptionSetDescription("downloading "+filepath.Base(destPath)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionThrottle(100*time.Millisecond),
		)
		w = io.MultiWriter(tmpFile, bar)
	}

	if _, err = io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("copy response body: %w", err)
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(d.progress)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return nil
}
