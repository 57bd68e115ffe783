// Package document handles acquisition of the source PDF and per-page text
// extraction.
package document

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/askdoc/askdoc/internal/errkind"
)

// Some document hosts reject requests without browser-like headers.
const (
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	acceptLanguage = "en-US,en;q=0.9"
)

// Fetcher downloads remote documents to local storage.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates a Fetcher with a default HTTP client.
func NewFetcher() *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: 0,
		},
	}
}

// EnsureLocal makes sure the document at rawURL exists at localPath.
// If the file is already present, no network access happens and the content
// is not re-validated. The body is written through a temp file and renamed,
// so a failed download never leaves a truncated file at localPath.
func (f *Fetcher) EnsureLocal(ctx context.Context, rawURL, localPath string) error {
	if _, err := os.Stat(localPath); err == nil {
		slog.Debug("document already cached, skipping download", "path", localPath)
		return nil
	}

	slog.Info("downloading document", "url", rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating download request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", acceptLanguage)
	if ref := refererFor(rawURL); ref != "" {
		req.Header.Set("Referer", ref)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return errkind.Errorf(errkind.Network, "downloading %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errkind.Errorf(errkind.Network, "downloading %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("creating document directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(localPath), filepath.Base(localPath)+".download-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errkind.Errorf(errkind.Network, "writing %s: %w", localPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, localPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("moving download into place: %w", err)
	}

	slog.Info("document downloaded", "path", localPath)
	return nil
}

// refererFor returns the origin of the document URL. Close enough to a real
// navigation referrer for hosts that check for one.
func refererFor(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host + "/"
}
