// Package ledger is a typed client for the donation-ledger HTTP API. The API
// exposes a single action-parameterized endpoint; queries run as GET with
// query parameters and mutations as POST with a JSON body, all wrapped in a
// {success, data, error} envelope.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	pingTimeout     = 10 * time.Second
	queryTimeout    = 12 * time.Second
	donationTimeout = 20 * time.Second
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping checks that the ledger service is reachable and responding.
func (c *Client) Ping(ctx context.Context) error {
	params := url.Values{}
	params.Set("action", "ping")
	return c.get(ctx, pingTimeout, params, nil)
}

// SearchByPhone looks up every person associated with a phone number.
func (c *Client) SearchByPhone(ctx context.Context, phone string) ([]Person, error) {
	params := url.Values{}
	params.Set("action", "searchByPhone")
	params.Set("phone", phone)

	var people []Person
	if err := c.get(ctx, queryTimeout, params, &people); err != nil {
		return nil, err
	}
	return people, nil
}

// CampaignTotal fetches aggregate donation figures for a campaign.
func (c *Client) CampaignTotal(ctx context.Context, campaignID int) (*CampaignTotal, error) {
	params := url.Values{}
	params.Set("action", "campaignTotal")
	params.Set("campaignId", strconv.Itoa(campaignID))

	var total CampaignTotal
	if err := c.get(ctx, queryTimeout, params, &total); err != nil {
		return nil, err
	}
	return &total, nil
}

// DonorTotal fetches one donor's running total within a campaign.
func (c *Client) DonorTotal(ctx context.Context, donorName string, campaignID int) (*DonorTotal, error) {
	params := url.Values{}
	params.Set("action", "donorTotal")
	params.Set("donorName", donorName)
	params.Set("campaignId", strconv.Itoa(campaignID))

	var total DonorTotal
	if err := c.get(ctx, queryTimeout, params, &total); err != nil {
		return nil, err
	}
	return &total, nil
}

// FundraiserStats fetches a fundraiser's personal statistics. Either the
// phone or the name may be empty; empty values are omitted from the query.
func (c *Client) FundraiserStats(ctx context.Context, fundraiserPhone, fundraiserName string) (*FundraiserStats, error) {
	params := url.Values{}
	params.Set("action", "fundraiserStats")
	if fundraiserPhone != "" {
		params.Set("fundraiserPhone", fundraiserPhone)
	}
	if fundraiserName != "" {
		params.Set("fundraiserName", fundraiserName)
	}

	var stats FundraiserStats
	if err := c.get(ctx, queryTimeout, params, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// FundraiserDonors fetches the donors assigned to a fundraiser within a
// campaign.
func (c *Client) FundraiserDonors(ctx context.Context, campaignID int, fundraiserPhone string) (*FundraiserDonors, error) {
	params := url.Values{}
	params.Set("action", "fundraiserDonors")
	params.Set("campaignId", strconv.Itoa(campaignID))
	params.Set("fundraiserPhone", fundraiserPhone)

	var donors FundraiserDonors
	if err := c.get(ctx, queryTimeout, params, &donors); err != nil {
		return nil, err
	}
	return &donors, nil
}

// AddDonation records a new donation. This is the only mutating action.
func (c *Client) AddDonation(ctx context.Context, donation Donation) (*DonationReceipt, error) {
	body := struct {
		Action string `json:"action"`
		Donation
	}{Action: "addDonation", Donation: donation}

	var receipt DonationReceipt
	if err := c.post(ctx, donationTimeout, body, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *Client) get(ctx context.Context, timeout time.Duration, params url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create ledger request: %w", err)
	}

	return c.roundTrip(ctx, params.Get("action"), req, out, true)
}

func (c *Client) post(ctx context.Context, timeout time.Duration, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create ledger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.roundTrip(ctx, "addDonation", req, out, false)
}

// dataRequired distinguishes the query actions, where a success envelope
// without a data payload is a service-side failure, from addDonation,
// where the mutation has already been applied and the envelope's success
// flag is authoritative even when the data payload is missing.
func (c *Client) roundTrip(ctx context.Context, action string, req *http.Request, out any, dataRequired bool) error {
	ctx, span := tracer.Start(ctx, "ledger "+action)
	defer span.End()
	span.SetAttributes(attribute.String("ledger.action", action))

	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		err = fmt.Errorf("ledger request failed: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = fmt.Errorf("ledger returned non-OK status: %s", resp.Status)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		err = fmt.Errorf("failed to decode ledger response: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if !env.Success {
		apiErr := &APIError{Message: errorMessage(env.Error)}
		logger.InfoContext(ctx, "ledger reported failure", "action", action, "message", apiErr.Message)
		return apiErr
	}

	if out == nil {
		return nil
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		if dataRequired {
			return &APIError{}
		}
		logger.WarnContext(ctx, "ledger reported success without a data payload", "action", action)
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		err = fmt.Errorf("failed to decode ledger data payload: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
