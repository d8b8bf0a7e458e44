// Package restapi is the thin HTTP layer every resource gateway sits on:
// bearer auth, per-request IDs, a fixed timeout, client-side rate limiting
// and the backend's error envelope decoded into the local error taxonomy.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"golang.org/x/time/rate"

	"sge-console/config"
	"sge-console/core/utils"
)

// TokenProvider returns the current bearer token, or "" before login.
type TokenProvider func() string

// Observer receives one sample per completed request; the obs package
// plugs prometheus in here.
type Observer interface {
	ObserveRequest(method, path string, status int, elapsed time.Duration)
}

type Client struct {
	base     string
	http     *http.Client
	token    TokenProvider
	limiter  *rate.Limiter
	timeout  time.Duration
	logger   *utils.Logger
	observer Observer
}

func NewClient(cfg *config.AppConfig, logger *utils.Logger, token TokenProvider) *Client {
	return &Client{
		base:    cfg.BaseURL,
		http:    &http.Client{},
		token:   token,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit.PerSecond), cfg.RateLimit.Burst),
		timeout: cfg.RequestTimeout,
		logger:  logger,
	}
}

func (c *Client) SetObserver(o Observer) { c.observer = o }

func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) PutJSON(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, data, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	_ = resp
	return nil
}

// PostBinary issues a POST expecting a file in response; the filename
// comes from Content-Disposition with a fallback name.
func (c *Client) PostBinary(ctx context.Context, path string, body any, fallbackName string) ([]byte, string, error) {
	resp, data, err := c.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, "", err
	}
	name := fallbackName
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if fn := strings.TrimSpace(params["filename"]); fn != "" {
				name = fn
			}
		}
	}
	return data, name, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, &ConnectionError{cause: err}
	}

	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if rid, err := uuid.NewV4(); err == nil {
		req.Header.Set("X-Request-ID", rid.String())
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(method, path, 0, started)
		if c.logger != nil {
			c.logger.Errorf("%s %s: %v", method, path, err)
		}
		return nil, nil, &ConnectionError{cause: err}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(method, path, 0, started)
		return nil, nil, &ConnectionError{cause: err}
	}
	c.observe(method, path, resp.StatusCode, started)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, parseAPIError(resp.StatusCode, data)
	}
	return resp, data, nil
}

func (c *Client) observe(method, path string, status int, started time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(method, path, status, time.Since(started))
	}
}
