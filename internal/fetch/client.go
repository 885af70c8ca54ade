package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable wraps every transport failure and HTTP error status.
// Callers treat it as recoverable: the next scheduled wake retries.
var ErrUnavailable = errors.New("network unavailable")

// Fetcher defines the network capability consumed by the apps.
// This interface is implemented by *Client and can be faked in tests.
type Fetcher interface {
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
	FetchJSON(ctx context.Context, url string, dest any) error
	ServerTime(ctx context.Context, url string) (time.Time, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Client fetches feeds, images and the time over HTTP.
type Client struct {
	http      *http.Client
	userAgent string
}

const (
	defaultUserAgent = "inkframe/0.1"
	defaultTimeout   = 60 * time.Second

	// chunkSize is the copy window for downloads.
	chunkSize = 1024
)

// NewClient builds a Client with the given per-request timeout. A zero
// timeout uses the default of one minute.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{
			Timeout: timeout,
		},
		userAgent: defaultUserAgent,
	}
}

// Download streams the body at url into w through a fixed 1 KiB window and
// returns the number of bytes written. A short or failed transfer returns
// an error; w may already hold part of the body.
func (c *Client) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("client is nil")
	}
	resp, err := c.send(ctx, http.MethodGet, url, "*/*")
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	var n int64
	buf := make([]byte, chunkSize)
	for {
		nr, rerr := resp.Body.Read(buf)
		if nr > 0 {
			nw, werr := w.Write(buf[:nr])
			n += int64(nw)
			if werr != nil {
				return n, fmt.Errorf("write body: %w", werr)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return n, fmt.Errorf("%w: read body: %v", ErrUnavailable, rerr)
		}
	}
	if resp.ContentLength > 0 && n != resp.ContentLength {
		return n, fmt.Errorf("%w: short body %d of %d bytes", ErrUnavailable, n, resp.ContentLength)
	}
	return n, nil
}

// FetchJSON decodes the JSON body at url into dest.
func (c *Client) FetchJSON(ctx context.Context, url string, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	resp, err := c.send(ctx, http.MethodGet, url, "application/json")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ServerTime issues a HEAD request and returns the server's Date header.
func (c *Client) ServerTime(ctx context.Context, url string) (time.Time, error) {
	if c == nil {
		return time.Time{}, fmt.Errorf("client is nil")
	}
	resp, err := c.send(ctx, http.MethodHead, url, "*/*")
	if err != nil {
		return time.Time{}, err
	}
	_ = resp.Body.Close()

	date := strings.TrimSpace(resp.Header.Get("Date"))
	if date == "" {
		return time.Time{}, fmt.Errorf("%w: response has no Date header", ErrUnavailable)
	}
	t, err := http.ParseTime(date)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse Date header %q: %w", date, err)
	}
	return t.UTC(), nil
}

func (c *Client) send(ctx context.Context, method, url, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: execute request: %v", ErrUnavailable, err)
	}
	if resp.StatusCode >= 400 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s %s returned status %d", ErrUnavailable, method, redact(url), resp.StatusCode)
	}
	return resp, nil
}

// redact drops the query string, which may carry an API key.
func redact(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}
