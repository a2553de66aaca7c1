package runner

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// ErrTimeout is returned by a Transport when no full response arrived within
// the per-request timeout.
var ErrTimeout = errors.New("timeout")

// Transport issues one blocking GET and reports the status code once the
// whole body has been read. Timeouts must be reported as ErrTimeout.
type Transport interface {
	Get(ctx context.Context, url string, timeout time.Duration) (int, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, url string, timeout time.Duration) (int, error)

func (f TransportFunc) Get(ctx context.Context, url string, timeout time.Duration) (int, error) {
	return f(ctx, url, timeout)
}

// HTTPTransport is the default Transport on a pooled net/http client.
type HTTPTransport struct {
	Client *http.Client
}

// NewHTTPTransport sizes the connection pool for maxConns concurrent players.
func NewHTTPTransport(maxConns int, insecure bool) *HTTPTransport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = maxConns
	t.MaxConnsPerHost = maxConns
	t.MaxIdleConnsPerHost = maxConns
	if insecure {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &HTTPTransport{
		// Per-request deadlines come from the context, not Client.Timeout.
		Client: &http.Client{Transport: t},
	}
}

func (t *HTTPTransport) Get(ctx context.Context, rawURL string, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, err
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return 0, classifyError(err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return 0, classifyError(err)
	}
	return resp.StatusCode, nil
}

// classifyError maps deadline errors to ErrTimeout and strips the *url.Error
// wrapper so the message names the underlying cause.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}
