// Package api is the authenticated REST client for the scholarship admin
// backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/scholaradmin/internal/settings"
	"github.com/jask/scholaradmin/internal/status"
)

const maxErrorBody = 4 << 10

// CredentialProvider yields a bearer token by key.
type CredentialProvider interface {
	Fetch(key string) (string, error)
}

// Client talks to the admin endpoints.
type Client struct {
	base     *url.URL
	creds    CredentialProvider
	tokenKey string
	http     *http.Client
	log      *zap.Logger
	validate *validator.Validate
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New builds a client for baseURL. creds is consulted on every request so a
// token stored mid-session is picked up without restarting.
func New(baseURL string, creds CredentialProvider, tokenKey string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api: base url %q must be absolute", baseURL)
	}
	if creds == nil {
		return nil, errors.New("api: credential provider required")
	}
	c := &Client{
		base:     u,
		creds:    creds,
		tokenKey: tokenKey,
		http:     &http.Client{Timeout: 15 * time.Second},
		log:      zap.NewNop(),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListApplications fetches every application in server order.
func (c *Client) ListApplications(ctx context.Context) ([]Application, error) {
	var out []Application
	if err := c.do(ctx, http.MethodGet, c.path("admin", "applications"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateApplicationStatus records a review decision.
func (c *Client) UpdateApplicationStatus(ctx context.Context, id int64, s status.Status, remarks string) (Application, error) {
	body := StatusUpdate{Status: s, Remarks: remarks}
	if err := c.validate.Struct(body); err != nil {
		return Application{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	var out Application
	p := c.path("admin", "applications", strconv.FormatInt(id, 10), "status")
	if err := c.do(ctx, http.MethodPatch, p, body, &out); err != nil {
		return Application{}, err
	}
	return out, nil
}

// Reports fetches the aggregate statistics.
func (c *Client) Reports(ctx context.Context) (ReportStats, error) {
	var out ReportStats
	if err := c.do(ctx, http.MethodGet, c.path("admin", "reports"), nil, &out); err != nil {
		return ReportStats{}, err
	}
	return out, nil
}

// Settings fetches the full settings object.
func (c *Client) Settings(ctx context.Context) (settings.Values, error) {
	var raw settings.Values
	if err := c.do(ctx, http.MethodGet, c.path("admin", "settings"), nil, &raw); err != nil {
		return nil, err
	}
	return settings.Normalize(raw), nil
}

// UpdateSetting writes a single setting. A 2xx response means accepted.
func (c *Client) UpdateSetting(ctx context.Context, key string, value any) error {
	switch strings.TrimSpace(key) {
	case "":
		return fmt.Errorf("%w: setting key required", ErrInvalidPayload)
	case ".", "..":
		return fmt.Errorf("%w: invalid setting key %q", ErrInvalidPayload, key)
	}
	// the key is one path segment; JoinPath would otherwise clean "/" and ".."
	return c.do(ctx, http.MethodPatch, c.path("admin", "settings", url.PathEscape(key)), SettingUpdate{Value: value}, nil)
}

func (c *Client) path(elem ...string) *url.URL {
	return c.base.JoinPath(elem...)
}

func (c *Client) do(ctx context.Context, method string, u *url.URL, body, out any) error {
	token, err := c.creds.Fetch(c.tokenKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoToken, err)
	}
	if strings.TrimSpace(token) == "" {
		return ErrNoToken
	}

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode %s body: %w", u.Path, err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("method", method), zap.String("path", u.Path), zap.String("request_id", reqID), zap.Error(err))
		return fmt.Errorf("api: %s %s: %w", method, u.Path, err)
	}
	defer resp.Body.Close()
	c.log.Debug("request done",
		zap.String("method", method),
		zap.String("path", u.Path),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Method: method, Path: u.Path, Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, u.Path, err)
	}
	return nil
}
