package ai

import (
	"context"
	"net/http"
)

// Provider is the interface every chat completion provider implements. It
// covers a single request's lifecycle: credential resolution, wire
// conversion, dispatch, and envelope decoding.
type Provider interface {
	// SendMessage sends a chat request and returns the completed response.
	// Credentials resolve in order: request override, provider override,
	// process-wide default. Returns an error if credentials cannot be
	// resolved, the exchange fails, or the response cannot be decoded.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// WithCredentials sets explicit credentials on the provider, overriding
	// the process-wide default for every call made through it.
	WithCredentials(credentials Credentials) Provider

	// WithHTTPClient sets the HTTP client used for outbound requests.
	WithHTTPClient(client *http.Client) Provider
}

// StreamProvider is implemented by providers that support SSE streaming.
// Callers detect support via type assertion: provider.(StreamProvider).
type StreamProvider interface {
	Provider

	// StreamMessage sends a chat request with streaming enabled and returns
	// a ChatStream yielding incremental deltas as they arrive. Pre-stream
	// errors (credentials, bad request, network) are returned as a normal
	// error; mid-stream errors are yielded through the iterator.
	StreamMessage(ctx context.Context, request ChatRequest) (*ChatStream, error)
}
