// Package client implements actor.Source against the remote actor endpoint:
// GET /actor?id=<email>. A 404 from the endpoint means the actor no longer
// exists and is reported as sentinel.ErrNotFound.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"fleetgate/internal/capability"
	"fleetgate/pkg/platform/sentinel"
)

const defaultTimeout = 10 * time.Second

var tracer = otel.Tracer("fleetgate/actor/client")

// Client fetches actor records over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New constructs a client for the actor endpoint at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves the actor record for email.
func (c *Client) Fetch(ctx context.Context, email string) (*capability.Actor, error) {
	ctx, span := tracer.Start(ctx, "actor.Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("actor.email", email))

	endpoint := fmt.Sprintf("%s/actor?id=%s", c.baseURL, url.QueryEscape(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build actor request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "actor fetch failed")
		return nil, fmt.Errorf("fetch actor: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fallthrough to decode
	case http.StatusNotFound:
		return nil, fmt.Errorf("actor %q: %w", email, sentinel.ErrNotFound)
	default:
		span.SetStatus(codes.Error, "unexpected status")
		return nil, fmt.Errorf("fetch actor: unexpected status %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}

	var record capability.Actor
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("decode actor response: %w", err)
	}
	if record.Capabilities == nil {
		record.Capabilities = capability.Bag{}
	}
	return &record, nil
}
