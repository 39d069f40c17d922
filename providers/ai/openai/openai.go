package openai

import (
	"context"
	"errors"
	"net/http"

	"chatwire/internal/utils"
	"chatwire/providers/ai"
)

const (
	// Routes are relative to the credentials' base URL, which always ends
	// with a path separator (e.g. https://api.openai.com/v1/).
	chatCompletionsRoute = "chat/completions"
	modelsRoute          = "models"
)

// OpenAIProvider implements [ai.Provider] and [ai.StreamProvider] for
// OpenAI-compatible chat completion APIs.
type OpenAIProvider struct {
	credentials *ai.Credentials
	client      *http.Client
}

// New returns an OpenAIProvider with no explicit credentials. Credentials
// resolve lazily on each call: request override first, then any set via
// [OpenAIProvider.WithCredentials], then the process-wide default.
func New() *OpenAIProvider {
	return &OpenAIProvider{
		client: &http.Client{},
	}
}

// WithCredentials sets explicit credentials for every call made through this
// provider and returns the provider so calls can be chained.
func (provider *OpenAIProvider) WithCredentials(credentials ai.Credentials) ai.Provider {
	credentials.BaseURL = ai.NormalizeBaseURL(credentials.BaseURL)
	provider.credentials = &credentials
	return provider
}

// WithHTTPClient replaces the default [http.Client] used for API calls and
// returns the provider so calls can be chained.
func (provider *OpenAIProvider) WithHTTPClient(client *http.Client) ai.Provider {
	provider.client = client
	return provider
}

// resolve picks the credentials for one call: request override, provider
// override, process-wide default.
func (provider *OpenAIProvider) resolve(request ai.ChatRequest) (ai.Credentials, error) {
	return ai.ResolveCredentials(request.Credentials, provider.credentials)
}

// SendMessage implements [ai.Provider]: it converts the request to the
// chat/completions wire format, posts it with bearer authentication, and
// decodes the success-or-error envelope into a canonical response.
func (provider *OpenAIProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	credentials, err := provider.resolve(request)
	if err != nil {
		return nil, err
	}

	wireRequest := requestToChatCompletion(request)
	url := credentials.BaseURL + chatCompletionsRoute

	httpResponse, body, err := utils.DoPost(ctx, provider.client, url, credentials.APIKey, wireRequest)
	if err != nil {
		return nil, err
	}

	response, err := ai.DecodeEnvelope[chatCompletionResponse](body)
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

// ListModels retrieves the models available to the resolved credentials.
func (provider *OpenAIProvider) ListModels(ctx context.Context) ([]ai.Model, error) {
	credentials, err := ai.ResolveCredentials(provider.credentials)
	if err != nil {
		return nil, err
	}

	_, body, err := utils.DoGet(ctx, provider.client, credentials.BaseURL+modelsRoute, credentials.APIKey)
	if err != nil {
		return nil, err
	}

	list, err := ai.DecodeEnvelope[modelsListResponse](body)
	if err != nil {
		return nil, err
	}

	models := make([]ai.Model, 0, len(list.Data))
	for _, entry := range list.Data {
		models = append(models, ai.Model{
			ID:      entry.ID,
			Object:  entry.Object,
			Created: entry.Created,
			OwnedBy: entry.OwnedBy,
		})
	}
	return models, nil
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
