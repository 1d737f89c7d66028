package kaapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"kachef/internal/logging"
	"kachef/internal/services"
)

const (
	defaultUserAgent      = "kachef/dev"
	defaultHTTPTimeout    = 120 * time.Second
	defaultMaxRetries     = 5
	defaultInitialBackoff = time.Second
)

// Config describes the Khan Academy HTTP client configuration.
type Config struct {
	UserAgent      string
	MaxRetries     int
	InitialBackoff time.Duration
	HTTPClient     *http.Client
	Logger         *slog.Logger
}

// Client performs bounded-retry requests against Khan Academy endpoints and
// the spreadsheets the chef reads alongside them.
type Client struct {
	userAgent string
	retries   int
	backoff   time.Duration
	http      *http.Client
	logger    *slog.Logger
}

// New creates a Client from the supplied configuration.
func New(cfg Config) *Client {
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}
	backoff := cfg.InitialBackoff
	if backoff <= 0 {
		backoff = defaultInitialBackoff
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		userAgent: userAgent,
		retries:   retries,
		backoff:   backoff,
		http:      client,
		logger:    logging.NewComponentLogger(cfg.Logger, "kaapi"),
	}
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Get fetches url and returns the body. 404 maps to services.ErrNotFound;
// exhausted retries map to services.ErrTransient.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, url, nil, "")
}

// PostJSON sends payload as JSON and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("kaapi: encode payload: %w", err)
	}
	data, err := c.do(ctx, http.MethodPost, url, body, "application/json")
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return services.Wrap(services.ErrExternal, "kaapi", "decode response", url, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, contentType string) ([]byte, error) {
	if c == nil {
		return nil, errors.New("kaapi: client is nil")
	}
	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		data, err := c.once(ctx, method, url, body, contentType)
		if err == nil {
			return data, nil
		}
		var status *StatusError
		if errors.As(err, &status) && status.StatusCode == http.StatusNotFound {
			return nil, services.Wrap(services.ErrNotFound, "kaapi", method, url, err)
		}
		if !IsRetriable(err) {
			return nil, services.Wrap(services.ErrExternal, "kaapi", method, url, err)
		}
		lastErr = err
		if attempt == c.retries {
			break
		}
		wait := c.backoff * time.Duration(attempt)
		c.logger.Debug("retrying request",
			logging.String("url", url),
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", c.retries),
			logging.Error(err),
		)
		if err := SleepWithContext(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, services.Wrap(services.ErrTransient, "kaapi", method, fmt.Sprintf("%s after %d attempts", url, c.retries), lastErr)
}

func (c *Client) once(ctx context.Context, method, url string, body []byte, contentType string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(data))
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: snippet}
	}
	return data, nil
}
