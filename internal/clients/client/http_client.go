package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/overtake-labs/staking-monitor/internal/observability/metrics"
	"github.com/overtake-labs/staking-monitor/internal/types"
	"github.com/rs/zerolog/log"
)

// BaseClient is implemented by every HTTP based provider client.
type BaseClient interface {
	GetBaseURL() string
	GetDefaultRequestTimeout() time.Duration
	GetHttpClient() *http.Client
}

type HttpClientOptions struct {
	// Timeout overrides the client default when positive
	Timeout time.Duration
	Path    string
	// TemplatePath is used as the metrics label so that query strings don't explode cardinality
	TemplatePath string
	Headers      map[string]string
}

// HttpError is returned for non-2xx responses that are not rate limits.
type HttpError struct {
	StatusCode int
	Body       string
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Body)
}

const maxErrorBodyLength = 512

func isAllowedMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodPost
}

func sendRequest[I any, R any](
	ctx context.Context, client BaseClient, method string, opts *HttpClientOptions, input *I,
) (*R, error) {
	if !isAllowedMethod(method) {
		return nil, fmt.Errorf("method %s is not allowed", method)
	}

	url := client.GetBaseURL() + opts.Path
	timeout := client.GetDefaultRequestTimeout()
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if input != nil {
		payload, err := json.Marshal(input)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if input != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	templatePath := opts.TemplatePath
	if templatePath == "" {
		templatePath = opts.Path
	}
	timer := metrics.StartClientRequestDurationTimer(client.GetBaseURL(), method, templatePath)

	resp, err := client.GetHttpClient().Do(req)
	if err != nil {
		// status 0 marks transport level failures (timeouts, refused connections)
		timer(0)
		return nil, fmt.Errorf("failed to send request to %s: %w", templatePath, err)
	}
	defer resp.Body.Close()
	timer(resp.StatusCode)

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &types.RateLimitError{
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    fmt.Sprintf("%s %s", method, templatePath),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLength))
		return nil, &HttpError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var output R
	if err := json.NewDecoder(resp.Body).Decode(&output); err != nil {
		log.Ctx(ctx).Debug().Err(err).Str("path", templatePath).Msg("failed to decode response body")
		return nil, fmt.Errorf("failed to decode response from %s: %w", templatePath, err)
	}

	return &output, nil
}

// parseRetryAfter understands the delta-seconds form of the Retry-After header.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	seconds, err := strconv.Atoi(v)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func SendRequest[I any, R any](
	ctx context.Context, client BaseClient, method string, opts *HttpClientOptions, input *I,
) (*R, error) {
	return sendRequest[I, R](ctx, client, method, opts, input)
}
