package utils

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPStatusError is returned by [DoPostStream] for non-2xx responses. The
// body is fully read before the connection is closed so the caller can
// decode the provider's error envelope from it.
type HTTPStatusError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("non-2xx status %d: %s", e.StatusCode, TruncateString(string(e.Body), DefaultMaxStringLength))
}

// DoPostStream performs an HTTP POST and returns the raw response with the
// body left open for SSE reading. The caller owns the body and must close it
// when done; closing it is also the cancellation primitive for the stream.
//
// On non-2xx responses the body is read and closed and an *HTTPStatusError
// is returned. Transport failures are returned as wrapped errors.
func DoPostStream(ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) (*http.Response, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}

	response, err := httpClient.Do(req)
	if err != nil {
		return response, fmt.Errorf("error sending stream request: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		defer CloseWithLog(response.Body)
		errorBody, readErr := io.ReadAll(io.LimitReader(response.Body, maxResponseBodySize))
		if readErr != nil {
			return response, fmt.Errorf("non-2xx status %d (failed to read body: %v)", response.StatusCode, readErr)
		}
		return response, &HTTPStatusError{StatusCode: response.StatusCode, Body: errorBody}
	}

	return response, nil
}

// maxSSELineSize is the maximum size of a single SSE line (1 MB). The
// default bufio.Scanner limit is 64 KiB, which is too small for large SSE
// events such as tool-call arguments or long completions. If a line exceeds
// this limit the scanner returns a wrapped bufio.ErrTooLong via Next().
const maxSSELineSize = 1 * 1024 * 1024

// SSEScanner reads Server-Sent Events from an io.Reader. It handles
// multi-line data fields, skips comments and empty lines, and detects the
// [DONE] sentinel used by OpenAI-compatible APIs.
type SSEScanner struct {
	scanner *bufio.Scanner
}

// NewSSEScanner creates an SSEScanner reading from reader. Individual SSE
// lines are supported up to maxSSELineSize.
func NewSSEScanner(reader io.Reader) *SSEScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineSize)
	return &SSEScanner{scanner: scanner}
}

// Next returns the next SSE data payload. It skips empty lines, comment
// lines (starting with ':'), and non-data fields (event:, id:, retry:).
// Multiple consecutive "data:" lines in one event are joined with newlines.
//
// Returns io.EOF when the stream ends or the [DONE] sentinel is encountered.
func (sseScanner *SSEScanner) Next() (string, error) {
	var dataLines []string

	for sseScanner.scanner.Scan() {
		line := sseScanner.scanner.Text()

		// Empty line signals end of an event; flush accumulated data lines.
		if line == "" {
			if len(dataLines) > 0 {
				return strings.Join(dataLines, "\n"), nil
			}
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		if strings.HasPrefix(line, "data:") {
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

			if data == "[DONE]" {
				return "", io.EOF
			}

			dataLines = append(dataLines, data)
			continue
		}

		// Other SSE fields (event:, id:, retry:) are ignored; the payloads
		// carry their own type discriminator.
	}

	if err := sseScanner.scanner.Err(); err != nil {
		return "", fmt.Errorf("SSE scanner error: %w", err)
	}

	if len(dataLines) > 0 {
		return strings.Join(dataLines, "\n"), nil
	}

	return "", io.EOF
}
