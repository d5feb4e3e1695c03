package services

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultUserAgent is sent on every eShop request unless configured otherwise.
const DefaultUserAgent = "WiiU/PBOS-1.1"

const (
	errorBodyLimit   = 4096
	defaultBodyLimit = 64 << 20
)

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns a client with its own transport so idle connections
// can be released when a run ends. A nil tlsConfig keeps the defaults.
func NewHTTPClient(timeout time.Duration, tlsConfig *tls.Config) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if tlsConfig != nil {
		transport.TLSClientConfig = tlsConfig
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	Op         string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s: http %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: http %d: %s", e.Op, e.StatusCode, body)
}

// Is maps 404 and 403 onto ErrNotFound and ErrForbidden, and 5xx onto
// ErrTransient.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrTransient:
		return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// StatusCode extracts the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// Request describes one GET issued by a service client.
type Request struct {
	Op        string
	URL       string
	UserAgent string
	Accept    string
	// MaxBytes caps the response body; zero uses a 64 MiB limit.
	MaxBytes int64
}

// GetBody issues req and returns the body of a 2xx response.
func GetBody(ctx context.Context, client Doer, req Request) ([]byte, error) {
	if client == nil {
		return nil, fmt.Errorf("%s: http client is nil", req.Op)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", req.Op, err)
	}
	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	httpReq.Header.Set("User-Agent", userAgent)
	if req.Accept != "" {
		httpReq.Header.Set("Accept", req.Accept)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, Wrap(ErrTransient, "", req.Op, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, &StatusError{
			Op:         req.Op,
			URL:        req.URL,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	limit := req.MaxBytes
	if limit <= 0 {
		limit = defaultBodyLimit
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, Wrap(ErrTransient, "", req.Op, "read response", err)
	}
	return body, nil
}
