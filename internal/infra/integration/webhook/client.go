package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xavierca1/consult-intake/internal/entity"
)

const (
	DefaultTimeout = 10 * time.Second
	SecretHeader   = "X-Webhook-Secret"

	maxBodyExcerpt = 512
)

var ErrNotConfigured = errors.New("webhook url not configured")

// DeliveryError is returned for any non-2xx answer.
type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("webhook responded %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	url    string
	secret string
	http   *http.Client
}

func NewClient(url, secret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:    url,
		secret: secret,
		http:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) Configured() bool {
	return c.url != ""
}

// Dispatch posts the payload and returns the receiver's execution id, if any.
func (c *Client) Dispatch(ctx context.Context, payload entity.WebhookPayload) (string, error) {
	if c.url == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.secret != "" {
		req.Header.Set(SecretHeader, c.secret)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt := string(respBody)
		if len(excerpt) > maxBodyExcerpt {
			excerpt = excerpt[:maxBodyExcerpt]
		}
		return "", &DeliveryError{StatusCode: resp.StatusCode, Body: excerpt}
	}

	return executionID(respBody), nil
}

// executionID reads executionId, execution_id or id from a JSON object body.
// Anything else, including an empty body, yields "".
func executionID(body []byte) string {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}
	for _, key := range []string{"executionId", "execution_id", "id"} {
		switch v := doc[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
