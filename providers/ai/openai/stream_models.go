package openai

import "encoding/json"

/*
	CHAT COMPLETIONS STREAMING API - RESPONSE TYPES

	These types model the SSE chunks returned by chat/completions when
	stream=true. Each chunk carries incremental deltas for content, the
	legacy function call, tool calls, and (in the final chunk, when
	stream_options.include_usage is set) usage metadata.
*/

// chatCompletionStreamChunk is a single SSE chunk from the streaming
// chat completions endpoint.
type chatCompletionStreamChunk struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"` // "chat.completion.chunk"
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []streamChoice `json:"choices"`
	Usage   *chatUsage     `json:"usage,omitempty"` // Final chunk only, with stream_options.include_usage
}

// streamChoice is one choice in a streaming chunk. Unlike the non-streaming
// chatChoice, it carries a Delta instead of a Message.
type streamChoice struct {
	Index        int         `json:"index"`
	Delta        streamDelta `json:"delta"`
	FinishReason *string     `json:"finish_reason"` // Nullable; nil until the final chunk for this choice
}

// streamDelta carries the incremental content of one chunk. Every field is
// optional: the first chunk typically carries only the role, later chunks
// carry content fragments or call deltas. Absent fields are no-ops when
// folding; only non-empty values participate in first-wins reconciliation.
type streamDelta struct {
	Role         string               `json:"role,omitempty"`
	Content      *string              `json:"content,omitempty"` // Nullable to distinguish empty fragment from absent
	Name         string               `json:"name,omitempty"`
	FunctionCall *chatFunctionCall    `json:"function_call,omitempty"`
	ToolCalls    []streamToolCallPart `json:"tool_calls,omitempty"`
}

// streamToolCallPart is an incremental tool call delta. The first chunk for
// a call carries the ID and function name; subsequent chunks carry argument
// fragments only.
type streamToolCallPart struct {
	Index    int    `json:"index"`
	ID       string `json:"id,omitempty"`
	Type     string `json:"type,omitempty"`
	Function struct {
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments,omitempty"`
	} `json:"function"`
}

// streamOptions configures streaming behavior in the request.
type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// unmarshalStreamChunk parses a raw SSE data payload into a chunk.
func unmarshalStreamChunk(data string) (*chatCompletionStreamChunk, error) {
	var chunk chatCompletionStreamChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return nil, err
	}
	return &chunk, nil
}
