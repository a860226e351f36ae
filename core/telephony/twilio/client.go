// Package twilio terminates the provider leg of a call. The realtime
// engine drops the media stream on hangup, but the carrier call stays
// up until the provider is told to complete it.
package twilio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultBaseURL = "https://api.twilio.com"
	hangupTimeout  = 10 * time.Second
)

type Client struct {
	baseURL    string
	accountSID string
	authToken  string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithBaseURL points the client at a different API host. Used in tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func NewClient(accountSID, authToken string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		accountSID: accountSID,
		authToken:  authToken,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   hangupTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Hangup completes the carrier call identified by callSID.
func (c *Client) Hangup(ctx context.Context, callSID string) error {
	ctx, span := tracer.Start(ctx, "twilio.hangup")
	defer span.End()

	form := url.Values{}
	form.Set("Status", "completed")

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls/%s.json",
		c.baseURL, c.accountSID, callSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build hangup request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to reach provider")
		return fmt.Errorf("failed to hang up provider call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("provider returned status %d: %s", resp.StatusCode, detail)
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider hangup rejected")
		return err
	}

	logger.InfoContext(ctx, "provider call completed", "call_sid", callSID)
	return nil
}
