package notion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"
)

// Some image hosts reject obvious non-browser clients.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

// Uploader re-hosts remote images in the store via the file-upload
// sub-protocol: download to a scratch file, create an upload slot, stream
// the bytes, return the handle.
type Uploader struct {
	client     *Client
	httpClient *http.Client
	timeout    time.Duration
}

func NewUploader(client *Client, timeout time.Duration) *Uploader {
	return &Uploader{
		client:     client,
		httpClient: &http.Client{},
		timeout:    timeout,
	}
}

// Publish re-hosts one image and returns its upload handle. A failure at
// any stage is returned as an error and never aborts the caller's wider
// work; the caller degrades the image to a plain link instead.
func (u *Uploader) Publish(ctx context.Context, imageURL string) (string, error) {
	scratch, err := u.download(ctx, imageURL)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer func() {
		// Best-effort cleanup
		if err := os.Remove(scratch); err != nil {
			slog.Debug("Failed to remove downloaded image", "path", scratch, "error", err)
		}
	}()

	upload, err := u.client.CreateFileUpload(ctx)
	if err != nil {
		return "", err
	}

	file, err := os.Open(scratch)
	if err != nil {
		return "", fmt.Errorf("failed to open downloaded image: %w", err)
	}
	defer file.Close()

	filename := path.Base(scratch)
	if err := u.client.SendFileUpload(ctx, upload.ID, filename, mimeTypeFor(filename), file); err != nil {
		return "", err
	}

	slog.Debug("Image uploaded", "url", imageURL, "upload_id", upload.ID)
	return upload.ID, nil
}

func (u *Uploader) download(ctx context.Context, imageURL string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	scratch, err := os.CreateTemp("", "rss-press-image-*"+extensionFor(imageURL))
	if err != nil {
		return "", fmt.Errorf("failed to create scratch file: %w", err)
	}

	if _, err := io.Copy(scratch, resp.Body); err != nil {
		scratch.Close()
		os.Remove(scratch.Name())
		return "", fmt.Errorf("failed to write scratch file: %w", err)
	}

	if err := scratch.Close(); err != nil {
		os.Remove(scratch.Name())
		return "", fmt.Errorf("failed to close scratch file: %w", err)
	}

	return scratch.Name(), nil
}

// extensionFor picks a file extension for the downloaded image, preferring
// the URL path's extension, then a format query parameter (Twitter's CDN
// convention), then jpg.
func extensionFor(imageURL string) string {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return ".jpg"
	}

	if ext := path.Ext(parsed.Path); ext != "" {
		return ext
	}

	if format := parsed.Query().Get("format"); format != "" {
		return "." + format
	}

	return ".jpg"
}

func mimeTypeFor(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if mimeType := mime.TypeByExtension(ext); mimeType != "" {
		return mimeType
	}
	return "image/png"
}
