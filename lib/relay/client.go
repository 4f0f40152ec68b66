// Package relay provides the single outbound HTTP funnel used by every feed reader.
// All third-party URLs are rewritten through a relay prefix, every attempt is bounded by a
// timeout, and failures are retried with a linearly increasing delay before degrading to
// an absent response.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultBaseDelay = time.Second
)

var (
	// ErrEmptyResponse is returned by Decode when there is no body to decode.
	ErrEmptyResponse = errors.New("empty response")
	// ErrUnavailable is returned by FetchJSON when every attempt failed.
	ErrUnavailable = errors.New("upstream unavailable")
)

// Config controls how the client reaches upstream feeds.
type Config struct {
	// Relay is the string prefix every outbound URL is rewritten through. Empty disables rewriting.
	Relay string
	// Timeout bounds a single attempt, including reading the body.
	Timeout time.Duration
	// Retries is the number of additional attempts made after the first one fails.
	Retries int
	// BaseDelay is multiplied by the attempt number to get the wait before the next attempt.
	BaseDelay time.Duration
	// Headers are added to every request (API keys and the like).
	Headers map[string]string
}

// Response is a successfully retrieved upstream body.
type Response struct {
	URL         string
	ContentType string
	Body        []byte
}

// IsJSON reports whether the upstream declared the body as JSON.
func (r *Response) IsJSON() bool {
	if r == nil {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		mediaType = r.ContentType
	}
	mediaType = strings.ToLower(mediaType)
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// Text returns the body as a string; XML and RSS feeds are consumed this way.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}

// Decode unmarshals the body into v.
// Bodies are decoded even when the content type was not declared as JSON since several
// upstreams serve JSON as text/plain.
func (r *Response) Decode(v interface{}) error {
	if r == nil || len(r.Body) == 0 {
		return ErrEmptyResponse
	}
	return json.Unmarshal(r.Body, v)
}

// Client fetches upstream resources through the relay.
type Client struct {
	logger *zap.Logger
	cfg    Config

	httpClient *http.Client
}

// NewClient creates a new relay client, filling unset timeouts with defaults.
func NewClient(logger *zap.Logger, cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelay
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}

	return &Client{
		logger:     logger,
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

// Rewrite returns the URL that is actually requested for the supplied target.
// Targets that already carry the relay prefix are left untouched.
func (c *Client) Rewrite(target string) string {
	if c.cfg.Relay == "" || strings.HasPrefix(target, c.cfg.Relay) {
		return target
	}
	return c.cfg.Relay + url.QueryEscape(target)
}

// Fetch retrieves the target, retrying failed attempts.
// A nil response means the upstream could not be reached; callers treat it as absence of data.
func (c *Client) Fetch(ctx context.Context, target string) *Response {
	finalURL := c.Rewrite(target)

	b := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{base: c.cfg.BaseDelay}, uint64(c.cfg.Retries)),
		ctx,
	)

	resp, err := backoff.RetryNotifyWithData(
		func() (*Response, error) {
			return c.attempt(ctx, finalURL)
		},
		b,
		func(err error, d time.Duration) {
			c.logger.Debug("fetch attempt failed, backing off",
				zap.String("url", target),
				zap.Duration("delay", d),
				zap.Error(err),
			)
		},
	)
	if err != nil {
		c.logger.Warn("fetch failed",
			zap.String("url", target),
			zap.Int("retries", c.cfg.Retries),
			zap.Error(err),
		)
		return nil
	}

	return resp
}

// FetchJSON fetches the target and decodes it into v.
func (c *Client) FetchJSON(ctx context.Context, target string, v interface{}) error {
	resp := c.Fetch(ctx, target)
	if resp == nil {
		return ErrUnavailable
	}

	if err := resp.Decode(v); err != nil {
		c.logger.Warn("error decoding body",
			zap.String("url", target),
			zap.String("content_type", resp.ContentType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (c *Client) attempt(parent context.Context, finalURL string) (*Response, error) {
	ctx, cancel := context.WithTimeout(parent, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Cache-Control", "no-store")
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		URL:         finalURL,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
