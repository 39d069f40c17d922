// Package anthropic implements the [ai.Provider] and [ai.StreamProvider]
// interfaces for Anthropic's Messages API.
//
// It handles request conversion from the canonical [ai.ChatRequest] format to
// the Messages wire format, response mapping back to [ai.ChatResponse], and
// SSE-based streaming. Authentication uses the x-api-key header together with
// a pinned anthropic-version header; routes are resolved against the
// credentials' base URL so proxies and test servers work unchanged.
//
// The primary entry point is [New]. Credentials resolve per call: a
// request-level override first, then credentials set via
// [AnthropicProvider.WithCredentials], then the process-wide default.
package anthropic
