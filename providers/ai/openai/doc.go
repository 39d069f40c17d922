// Package openai implements the [ai.Provider] and [ai.StreamProvider]
// interfaces for OpenAI-compatible chat completion APIs.
//
// It handles request conversion from the generic [ai.ChatRequest] to the
// chat/completions wire format, response mapping back to [ai.ChatResponse],
// and SSE-based streaming of delta chunks. Authentication uses a bearer
// token in the Authorization header.
//
// The primary entry point is [New]. Credentials resolve per call: an
// explicit [ai.Credentials] on the request wins, then one set via
// [OpenAIProvider.WithCredentials], then the process-wide default built
// from OPENAI_KEY and OPENAI_BASE_URL.
package openai
