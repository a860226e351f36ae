package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/codes"
)

const callControlTimeout = 10 * time.Second

// CallControl drives the engine's REST surface for a call: accepting
// an incoming call into a session and hanging it up.
type CallControl struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewCallControl returns a control client rooted at baseURL, e.g.
// https://api.openai.com/v1/realtime/calls.
func NewCallControl(baseURL, apiKey string) *CallControl {
	return &CallControl{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   callControlTimeout,
		},
	}
}

// Tool is a tool definition in the engine's wire shape.
type Tool struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters"`
}

// AcceptParams configures the session a call is accepted into.
type AcceptParams struct {
	Model        string `json:"model"`
	Instructions string `json:"instructions"`
	Voice        string `json:"-"`
	Tools        []Tool `json:"tools,omitempty"`
}

type acceptRequest struct {
	Type string `json:"type"`
	AcceptParams
	Audio acceptAudio `json:"audio"`
}

type acceptAudio struct {
	Output acceptAudioOutput `json:"output"`
}

type acceptAudioOutput struct {
	Voice string `json:"voice"`
}

// Accept answers an incoming call and binds it to a fresh session.
func (c *CallControl) Accept(ctx context.Context, callID string, params AcceptParams) error {
	ctx, span := tracer.Start(ctx, "realtime.accept")
	defer span.End()

	err := c.post(ctx, callID, "accept", acceptRequest{
		Type:         "realtime",
		AcceptParams: params,
		Audio:        acceptAudio{Output: acceptAudioOutput{Voice: params.Voice}},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to accept call")
		return fmt.Errorf("failed to accept call: %w", err)
	}
	return nil
}

// Hangup asks the engine to terminate the media leg of the call.
func (c *CallControl) Hangup(ctx context.Context, callID string) error {
	ctx, span := tracer.Start(ctx, "realtime.hangup")
	defer span.End()

	if err := c.post(ctx, callID, "hangup", nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to hang up call")
		return fmt.Errorf("failed to hang up call: %w", err)
	}
	return nil
}

func (c *CallControl) post(ctx context.Context, callID, action string, body any) error {
	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/"+callID+"/"+action, payload)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("engine returned status %d: %s", resp.StatusCode, detail)
	}
	return nil
}
