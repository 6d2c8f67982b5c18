package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const (
	ErrTimeout    = "timeout"
	ErrConnection = "connection_error"
	ErrHTTP       = "http_error"
	ErrUnexpected = "unexpected_error"
)

// Result describes one delivery attempt. It is returned to API clients as-is.
type Result struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
	Message    string `json:"message"`
}

type Client struct {
	url       string
	userAgent string
	http      *http.Client
}

func NewClient(url, userAgent string, timeout time.Duration) *Client {
	return &Client{
		url:       url,
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) URL() string {
	return c.url
}

// Send posts payload as JSON. Failures are reported in the Result, never as an error.
func (c *Client) Send(ctx context.Context, payload any) Result {
	body, err := json.Marshal(payload)
	if err != nil {
		return unexpected(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return unexpected(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return classify(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode >= 400 {
		slog.Warn("Webhook returned HTTP error", slog.Int("status", resp.StatusCode))
		return Result{
			Success:    false,
			StatusCode: resp.StatusCode,
			Error:      ErrHTTP,
			Message:    fmt.Sprintf("Webhook returned HTTP error: %s", resp.Status),
		}
	}

	slog.Info("Sent data to webhook", slog.Int("status", resp.StatusCode))
	return Result{
		Success:    true,
		StatusCode: resp.StatusCode,
		Message:    "Data sent to webhook successfully",
	}
}

func classify(err error) Result {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		slog.Warn("Webhook request timed out")
		return Result{Error: ErrTimeout, Message: "Webhook request timed out"}
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		slog.Warn("Could not connect to webhook", slog.String("error", err.Error()))
		return Result{Error: ErrConnection, Message: "Could not connect to webhook"}
	}
	return unexpected(err)
}

func unexpected(err error) Result {
	slog.Error("Unexpected error sending to webhook", slog.String("error", err.Error()))
	return Result{Error: ErrUnexpected, Message: fmt.Sprintf("Unexpected error: %s", err)}
}
