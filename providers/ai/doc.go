// Package ai defines the shared, provider-agnostic types used across the
// chatwire provider implementations (OpenAI and Anthropic). Each provider's
// conversion layer is responsible for mapping these types to its own wire
// format, keeping callers decoupled from provider-specific details.
//
// The two central interfaces are [Provider] for synchronous chat completions
// and [StreamProvider] for SSE-based streaming responses. Request data flows
// through [ChatRequest] and responses come back as [ChatResponse]. For
// real-time streaming, [ChatStream] and [StreamEvent] carry incremental
// deltas to the caller; [ChatStream.Collect] folds them into the same
// [ChatResponse] shape a synchronous call would return.
//
// Authentication and endpoint selection are driven by [Credentials]: a
// per-call value object naming a provider, an API key, and a normalized base
// URL. When no explicit credentials are supplied, a process-wide default is
// lazily built from the environment (see [DefaultCredentials]).
//
// Success-or-error response envelopes are resolved structurally by
// [DecodeEnvelope]: a body with a top-level "error" key decodes to an
// [*APIError], anything else decodes to the requested success shape.
package ai
