package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// HeaderOption is one header to set on an outbound request. Providers build
// their own auth scheme from these: OpenAI-style APIs use the bearer token
// path built into the helpers, Anthropic passes an empty apiKey and supplies
// x-api-key / anthropic-version headers explicitly.
type HeaderOption struct {
	Key   string
	Value string
}

// maxResponseBodySize caps body reads (10 MB) to prevent unbounded memory
// allocation from rogue responses.
const maxResponseBodySize int64 = 10 * 1024 * 1024

// DoPost performs a single synchronous HTTP POST with a JSON body and
// returns the response together with its fully-read body. When apiKey is
// non-empty an Authorization bearer header is attached; custom headers are
// applied afterwards and may override it.
//
// A non-nil error is returned only for transport-level failures (request
// construction, connection, read). Non-2xx statuses are NOT an error here:
// the body is handed back so the caller can decode the provider's error
// envelope from it.
func DoPost(ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) (*http.Response, []byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return doRequest(client, req, apiKey, headers)
}

// DoGet performs a single synchronous HTTP GET and returns the response
// together with its fully-read body, under the same contract as [DoPost].
func DoGet(ctx context.Context, client *http.Client, url string, apiKey string, headers ...HeaderOption) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}

	return doRequest(client, req, apiKey, headers)
}

func doRequest(client *http.Client, req *http.Request, apiKey string, headers []HeaderOption) (*http.Response, []byte, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}

	requestStart := time.Now()
	res, err := httpClient.Do(req)
	if err != nil {
		return res, nil, fmt.Errorf("error sending request: %w", err)
	}
	defer CloseWithLog(res.Body)

	respBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
	if err != nil {
		return res, nil, fmt.Errorf("error reading response body: %w", err)
	}

	slog.Debug("http exchange completed",
		"method", req.Method,
		"url", req.URL.String(),
		"status", res.StatusCode,
		"duration", time.Since(requestStart),
		"body_size", len(respBody),
	)

	return res, respBody, nil
}

// CloseWithLog closes the closer, logging a warning on failure instead of
// overriding whichever primary error is already in flight.
func CloseWithLog(closer io.Closer) {
	if err := closer.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}
