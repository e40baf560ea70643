package release

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"freshrss-update/internal/apperr"
	"freshrss-update/internal/logger"
)

// Downloader fetches tag archives over HTTP.
type Downloader struct {
	httpClient *http.Client
}

// NewDownloader creates a downloader using client. A nil client falls back to
// a plain http.Client: no timeout is set, a stalled server stalls the run.
func NewDownloader(client *http.Client) *Downloader {
	if client == nil {
		client = &http.Client{}
	}
	return &Downloader{httpClient: client}
}

// ProgressWriter wraps an io.Writer to report how many bytes went through it.
type ProgressWriter struct {
	Writer   io.Writer
	Total    int64 // Content-Length, -1 when the server did not send one
	Current  int64
	OnUpdate func(current, total int64)
}

// Write implements io.Writer and reports progress.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Current += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Current, pw.Total)
	}
	return n, err
}

// Download issues a single unauthenticated GET for url and writes the body
// verbatim to dest, replacing any existing file. The parent directory of dest
// must already exist.
//
// A response that is not 2xx, or that declares a text/* content type (GitHub
// answers unknown tags with an HTML page), fails with apperr.ErrNetwork before
// anything is written.
func (d *Downloader) Download(ctx context.Context, url, dest string, onProgress func(current, total int64)) error {
	logger.Debug("[DEBUG] GET %s\n", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return goerr.Wrap(errors.Join(apperr.ErrNetwork, err), "failed to create request", goerr.V("url", url))
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(errors.Join(apperr.ErrNetwork, err), "failed to GET archive", goerr.V("url", url))
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close HTTP response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return goerr.Wrap(apperr.ErrNetwork, "archive download failed",
			goerr.V("url", url), goerr.V("status", resp.StatusCode))
	}
	if contentType := resp.Header.Get("Content-Type"); isTextual(contentType) {
		return goerr.Wrap(apperr.ErrNetwork, "server returned a document instead of an archive",
			goerr.V("url", url), goerr.V("content_type", contentType))
	}

	// No MkdirAll here: a missing downloads directory is reported, not created
	out, err := os.Create(dest)
	if err != nil {
		return goerr.Wrap(errors.Join(apperr.ErrFileSystem, err), "failed to create archive file", goerr.V("path", dest))
	}

	var w io.Writer = out
	if onProgress != nil {
		w = &ProgressWriter{Writer: out, Total: resp.ContentLength, OnUpdate: onProgress}
	}

	written, err := io.Copy(w, resp.Body)
	if cerr := out.Close(); err == nil && cerr != nil {
		return goerr.Wrap(errors.Join(apperr.ErrFileSystem, cerr), "failed to close archive file", goerr.V("path", dest))
	}
	if err != nil {
		// A read error mid-body is a transport failure, a write error is local
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return goerr.Wrap(errors.Join(apperr.ErrFileSystem, err), "failed to write archive file", goerr.V("path", dest))
		}
		return goerr.Wrap(errors.Join(apperr.ErrNetwork, err), "failed to read response body", goerr.V("url", url))
	}

	logger.Debug("[DEBUG] Wrote %d bytes to %s\n", written, dest)
	return nil
}

// isTextual reports whether a Content-Type header announces a text document.
func isTextual(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	return strings.HasPrefix(strings.ToLower(mediaType), "text/")
}
