// Package checkin sends lifecycle pings (start, success, failure, log) for a
// monitored job to a Healthchecks.io compatible endpoint.
//
// Every request is a single best-effort attempt bounded by a timeout; there
// are no retries.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds each request, connection and response included.
const DefaultTimeout = 10 * time.Second

// maxResponseBody caps how much of a response body is kept.
const maxResponseBody = 4 << 10

// ErrUnexpectedStatus is returned for any non-2xx response.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Doer sends HTTP requests. *http.Client satisfies it; tests and alternative
// transports can plug in their own.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Client.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Transport Doer // defaults to an *http.Client
	Logger    zerolog.Logger
}

// Response is what the endpoint answered to a ping.
type Response struct {
	StatusCode int
	Body       string
}

// Client pings a single check.
type Client struct {
	prefix    string
	http      Doer
	timeout   time.Duration
	userAgent string
	logger    zerolog.Logger
}

// New returns a Client that pings the check at prefix, as resolved by
// Endpoint.URL.
func New(prefix string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	transport := opts.Transport
	if transport == nil {
		transport = &http.Client{Timeout: timeout}
	}
	return &Client{
		prefix:    strings.TrimRight(prefix, "/"),
		http:      transport,
		timeout:   timeout,
		userAgent: opts.UserAgent,
		logger:    opts.Logger,
	}
}

// NotifyStart signals that the job is starting. A valid runID is attached so
// the endpoint can pair this ping with the matching completion.
func (c *Client) NotifyStart(ctx context.Context, runID uuid.NullUUID) (*Response, error) {
	return c.do(ctx, http.MethodGet, withRunID(c.prefix+"/start", runID), "")
}

// NotifyComplete signals that the job finished. A nil code records a log
// entry without changing the check's state; zero is success and anything
// else a failure. The body is sent only when non-empty.
func (c *Client) NotifyComplete(ctx context.Context, runID uuid.NullUUID, code *uint8, body string) (*Response, error) {
	status := "log"
	if code != nil {
		status = strconv.Itoa(int(*code))
	}
	return c.do(ctx, http.MethodPost, withRunID(c.prefix+"/"+status, runID), body)
}

func (c *Client) do(ctx context.Context, method, target, body string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != "" {
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	}

	c.logger.Debug().
		Str("method", method).
		Str("url", target).
		Str("user_agent", c.userAgent).
		Int("body_bytes", len(body)).
		Msg("sending request")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	out := &Response{StatusCode: resp.StatusCode, Body: string(data)}

	c.logger.Debug().Int("status", out.StatusCode).Str("body", out.Body).Msg("received response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}
	return out, nil
}

func withRunID(target string, runID uuid.NullUUID) string {
	if !runID.Valid {
		return target
	}
	return target + "?" + url.Values{"rid": {runID.UUID.String()}}.Encode()
}
