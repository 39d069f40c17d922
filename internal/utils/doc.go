// Package utils provides the shared low-level HTTP plumbing used by the
// chatwire provider implementations. It covers synchronous JSON round-trips
// ([DoPost], [DoGet]), streaming requests whose body is left open for SSE
// consumption ([DoPostStream] together with [SSEScanner]), and small string
// helpers.
//
// The transport performs exactly one exchange per call: no retries, no
// backoff, no imposed timeouts. Cancellation and deadlines come from the
// caller's context. Non-2xx responses are not treated as transport errors by
// the synchronous helpers — the body is returned so the envelope decoding
// layer can surface the provider's error payload intact.
package utils
