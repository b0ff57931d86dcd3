package ussd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// DefaultTimeout is the per-call timeout for outbound USSD requests.
const DefaultTimeout = 30 * time.Second

// ClientConfig holds the transport client configuration.
type ClientConfig struct {
	// Timeout is the HTTP timeout for endpoint requests.
	Timeout time.Duration
}

// DefaultClientConfig returns the default transport configuration.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{Timeout: DefaultTimeout}
}

// Client sends USSD turns to a target endpoint. One request per call, no
// retries: the simulator reports exactly what a single attempt did.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new transport client.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultClientConfig()
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// ErrKind classifies a failed attempt.
type ErrKind string

const (
	// ErrKindConnectivity means the endpoint was unreachable or timed out.
	ErrKindConnectivity ErrKind = "connectivity"
	// ErrKindRemote means the endpoint answered with a non-success status.
	ErrKindRemote ErrKind = "remote"
	// ErrKindMalformed means the reply body could not be decoded.
	ErrKindMalformed ErrKind = "malformed"
)

// CallResult is the outcome of one attempt. Transport failures are folded
// into Err rather than returned as a Go error: every attempt yields exactly
// one result with a measured duration, which the caller records verbatim.
type CallResult struct {
	Response *RootResponse
	Err      string
	ErrKind  ErrKind
	Duration time.Duration
}

// OK reports whether the attempt produced a decoded reply.
func (r *CallResult) OK() bool {
	return r.Response != nil
}

// Send posts one request to endpointURL and returns the outcome. It never
// returns a Go error for transport-level failures; the only way to observe
// them is through CallResult.Err.
func (c *Client) Send(ctx context.Context, endpointURL string, request *RootRequest) *CallResult {
	start := time.Now()

	fail := func(kind ErrKind, errText string) *CallResult {
		return &CallResult{Err: errText, ErrKind: kind, Duration: time.Since(start)}
	}

	body, err := json.Marshal(request)
	if err != nil {
		return fail(ErrKindMalformed, errors.Wrap(err, "failed to encode request").Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewReader(body))
	if err != nil {
		return fail(ErrKindConnectivity, errors.Wrap(err, "failed to create request").Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(ErrKindConnectivity, "no response from endpoint, check that the backend is running: "+err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(ErrKindConnectivity, errors.Wrap(err, "failed to read response body").Error())
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fail(ErrKindRemote, errors.Errorf("endpoint returned status %d: %s", resp.StatusCode, string(raw)).Error())
	}

	var decoded RootResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fail(ErrKindMalformed, errors.Wrapf(err, "failed to decode response body: %s", string(raw)).Error())
	}

	return &CallResult{Response: &decoded, Duration: time.Since(start)}
}
