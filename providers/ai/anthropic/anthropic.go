package anthropic

import (
	"context"
	"errors"
	"net/http"

	"chatwire/internal/utils"
	"chatwire/providers/ai"
)

const (
	// messagesRoute is relative to the credentials' base URL, which always
	// ends with a path separator (e.g. https://api.anthropic.com/v1/).
	messagesRoute = "messages"

	// anthropicVersion is the required anthropic-version header value.
	// Anthropic uses it to version-lock response formats independently of
	// the URL.
	anthropicVersion = "2023-06-01"
)

// AnthropicProvider implements [ai.Provider] and [ai.StreamProvider] for
// Anthropic's Messages API.
type AnthropicProvider struct {
	credentials *ai.Credentials
	client      *http.Client
}

// New returns an AnthropicProvider with no explicit credentials. Credentials
// resolve lazily on each call: request override first, then any set via
// [AnthropicProvider.WithCredentials], then the process-wide default.
func New() *AnthropicProvider {
	return &AnthropicProvider{
		client: &http.Client{},
	}
}

// WithCredentials sets explicit credentials for every call made through this
// provider and returns the provider so calls can be chained.
func (provider *AnthropicProvider) WithCredentials(credentials ai.Credentials) ai.Provider {
	credentials.BaseURL = ai.NormalizeBaseURL(credentials.BaseURL)
	provider.credentials = &credentials
	return provider
}

// WithHTTPClient replaces the default [http.Client] used for API calls and
// returns the provider so calls can be chained.
func (provider *AnthropicProvider) WithHTTPClient(client *http.Client) ai.Provider {
	provider.client = client
	return provider
}

func (provider *AnthropicProvider) resolve(request ai.ChatRequest) (ai.Credentials, error) {
	return ai.ResolveCredentials(request.Credentials, provider.credentials)
}

// buildHeaders constructs the headers required on every Anthropic request.
// x-api-key carries the credential (Anthropic does not use Bearer tokens)
// and anthropic-version pins the wire format.
func buildHeaders(apiKey string) []utils.HeaderOption {
	return []utils.HeaderOption{
		{Key: "x-api-key", Value: apiKey},
		{Key: "anthropic-version", Value: anthropicVersion},
	}
}

// SendMessage implements [ai.Provider]: it converts the request to the
// Messages wire format, posts it with x-api-key authentication, and decodes
// the success-or-error envelope into a canonical response.
func (provider *AnthropicProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	credentials, err := provider.resolve(request)
	if err != nil {
		return nil, err
	}

	wireRequest := requestToAnthropic(request)
	url := credentials.BaseURL + messagesRoute

	// Empty apiKey suppresses the Bearer header; authentication rides on the
	// explicit header options instead.
	httpResponse, body, err := utils.DoPost(ctx, provider.client, url, "", wireRequest, buildHeaders(credentials.APIKey)...)
	if err != nil {
		return nil, err
	}

	response, err := ai.DecodeEnvelope[anthropicResponse](body)
	if err != nil {
		if ai.IsDecodeError(err) && (httpResponse.StatusCode < 200 || httpResponse.StatusCode >= 300) {
			// Non-JSON error body (gateway HTML, plain text): report the
			// status rather than the parse failure.
			return nil, ai.ErrorFromResponse(httpResponse.StatusCode, body)
		}
		return nil, err
	}

	return responseToGeneric(response), nil
}

// streamStatusError converts a non-2xx pre-stream failure into the
// provider's error envelope when the body carries one.
func streamStatusError(err error) error {
	var statusErr *utils.HTTPStatusError
	if errors.As(err, &statusErr) {
		return ai.ErrorFromResponse(statusErr.StatusCode, statusErr.Body)
	}
	return err
}
