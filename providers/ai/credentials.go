package ai

import (
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
)

// APIProvider tags the upstream API a set of credentials belongs to.
type APIProvider string

const (
	ProviderOpenAI    APIProvider = "openai"
	ProviderAnthropic APIProvider = "anthropic"
)

// Credentials holds the API key and base URL for one provider. Instances are
// immutable value objects: they are copied into each outgoing call and never
// mutated mid-flight, so distinct concurrent calls can carry distinct
// credentials without interfering.
//
// BaseURL always ends with a path separator; construct values through
// [NewCredentials] or [CredentialsFromEnv] to keep that invariant.
type Credentials struct {
	Provider APIProvider
	APIKey   string
	BaseURL  string
}

// NewCredentials builds Credentials from an API key and base URL. The URL is
// normalized to end with "/" and the provider is inferred from it; an URL
// matching neither provider's marker is a configuration error.
func NewCredentials(apiKey, baseURL string) (Credentials, error) {
	normalized := NormalizeBaseURL(baseURL)
	provider, err := InferProvider(normalized)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{
		Provider: provider,
		APIKey:   apiKey,
		BaseURL:  normalized,
	}, nil
}

// InferProvider determines the provider from a substring marker in the base
// URL. URLs containing "openai" map to [ProviderOpenAI], URLs containing
// "anthropic" to [ProviderAnthropic]. Anything else is a configuration error.
func InferProvider(baseURL string) (APIProvider, error) {
	switch {
	case strings.Contains(baseURL, "openai"):
		return ProviderOpenAI, nil
	case strings.Contains(baseURL, "anthropic"):
		return ProviderAnthropic, nil
	default:
		return "", NewConfigError("unrecognized base URL: %s", baseURL)
	}
}

// NormalizeBaseURL appends a trailing path separator when absent. The
// operation is idempotent.
func NormalizeBaseURL(baseURL string) string {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return baseURL
}

// Per-provider environment variable bindings. The names follow the original
// client conventions: OPENAI_KEY / OPENAI_BASE_URL and
// ANTHROPIC_KEY / ANTHROPIC_URL.
type openaiEnv struct {
	APIKey  string `env:"OPENAI_KEY,required"`
	BaseURL string `env:"OPENAI_BASE_URL,required"`
}

type anthropicEnv struct {
	APIKey  string `env:"ANTHROPIC_KEY,required"`
	BaseURL string `env:"ANTHROPIC_URL,required"`
}

// CredentialsFromEnv reads the API key and base URL for the given provider
// from the environment. A missing variable or an unknown provider is returned
// as a configuration error so library consumers can handle it; no process
// abort happens here.
func CredentialsFromEnv(provider APIProvider) (Credentials, error) {
	var apiKey, baseURL string

	switch provider {
	case ProviderOpenAI:
		cfg, err := env.ParseAs[openaiEnv]()
		if err != nil {
			return Credentials{}, NewConfigError("openai credentials from environment: %v", err)
		}
		apiKey, baseURL = cfg.APIKey, cfg.BaseURL
	case ProviderAnthropic:
		cfg, err := env.ParseAs[anthropicEnv]()
		if err != nil {
			return Credentials{}, NewConfigError("anthropic credentials from environment: %v", err)
		}
		apiKey, baseURL = cfg.APIKey, cfg.BaseURL
	default:
		return Credentials{}, NewConfigError("unknown provider: %q", provider)
	}

	return Credentials{
		Provider: provider,
		APIKey:   apiKey,
		BaseURL:  NormalizeBaseURL(baseURL),
	}, nil
}

// The process-wide default credentials. Built lazily from the OpenAI
// environment variables on first use. Reads take a snapshot under the read
// lock; only the deprecated legacy mutators take the write lock, so
// concurrent calls with explicit credentials never contend.
var (
	defaultMu          sync.RWMutex
	defaultCredentials *Credentials
)

// DefaultCredentials returns a snapshot of the process-wide default
// credentials, lazily building them from OPENAI_KEY and OPENAI_BASE_URL on
// first use. Missing environment variables surface as a configuration error.
func DefaultCredentials() (Credentials, error) {
	defaultMu.RLock()
	if defaultCredentials != nil {
		snapshot := *defaultCredentials
		defaultMu.RUnlock()
		return snapshot, nil
	}
	defaultMu.RUnlock()

	creds, err := CredentialsFromEnv(ProviderOpenAI)
	if err != nil {
		return Credentials{}, err
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultCredentials == nil {
		defaultCredentials = &creds
	}
	return *defaultCredentials, nil
}

// SetDefaultCredentials replaces the process-wide default.
func SetDefaultCredentials(creds Credentials) {
	creds.BaseURL = NormalizeBaseURL(creds.BaseURL)
	defaultMu.Lock()
	defaultCredentials = &creds
	defaultMu.Unlock()
}

// SetKey sets the API key on the process-wide default credentials.
//
// Deprecated: pass [Credentials] explicitly on the request or provider
// instead of mutating global state.
func SetKey(apiKey string) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultCredentials == nil {
		defaultCredentials = &Credentials{Provider: ProviderOpenAI, BaseURL: defaultOpenAIBaseURL}
	}
	defaultCredentials.APIKey = apiKey
}

// SetBaseURL sets the base URL on the process-wide default credentials.
// An empty value is ignored.
//
// Deprecated: pass [Credentials] explicitly on the request or provider
// instead of mutating global state.
func SetBaseURL(baseURL string) {
	if baseURL == "" {
		return
	}
	baseURL = NormalizeBaseURL(baseURL)
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultCredentials == nil {
		defaultCredentials = &Credentials{Provider: ProviderOpenAI}
	}
	defaultCredentials.BaseURL = baseURL
}

// defaultOpenAIBaseURL is used when the deprecated mutators initialize the
// default credentials before any environment lookup.
const defaultOpenAIBaseURL = "https://api.openai.com/v1/"

// ResolveCredentials returns the first non-nil candidate as an immutable
// snapshot, falling back to the process-wide default. Providers call it with
// (request override, provider override).
func ResolveCredentials(candidates ...*Credentials) (Credentials, error) {
	for _, candidate := range candidates {
		if candidate != nil {
			return *candidate, nil
		}
	}
	return DefaultCredentials()
}
