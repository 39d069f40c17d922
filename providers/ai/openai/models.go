package openai

import "encoding/json"

/*
	CHAT COMPLETIONS API - REQUEST TYPES
*/

// chatCompletionRequest is the chat/completions request body. Field names
// are the wire's snake_case keys; optional fields are omitted when unset.
type chatCompletionRequest struct {
	Model            string              `json:"model"`
	Messages         []chatMessage       `json:"messages"`
	Temperature      *float64            `json:"temperature,omitempty"`
	TopP             *float64            `json:"top_p,omitempty"`
	N                *int                `json:"n,omitempty"`
	Stream           *bool               `json:"stream,omitempty"`
	StreamOptions    *streamOptions      `json:"stream_options,omitempty"`
	Stop             []string            `json:"stop,omitempty"` // The API documents a maximum of 4; passed through unchecked
	Seed             *int                `json:"seed,omitempty"`
	MaxTokens        *int                `json:"max_tokens,omitempty"`
	PresencePenalty  *float64            `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64            `json:"frequency_penalty,omitempty"`
	LogitBias        map[string]float64  `json:"logit_bias,omitempty"`
	User             string              `json:"user,omitempty"`
	Functions        []chatFunction      `json:"functions,omitempty"`
	FunctionCall     json.RawMessage     `json:"function_call,omitempty"` // "auto", "none", or {"name": ...}
	Tools            []chatTool          `json:"tools,omitempty"`
	ResponseFormat   *chatResponseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role         string            `json:"role"` // system, user, assistant, function, tool
	Content      string            `json:"content,omitempty"`
	Name         string            `json:"name,omitempty"`
	FunctionCall *chatFunctionCall `json:"function_call,omitempty"` // For role=assistant using legacy functions
	ToolCallID   string            `json:"tool_call_id,omitempty"`  // For role=tool
	ToolCalls    []chatToolCall    `json:"tool_calls,omitempty"`    // For role=assistant
}

type chatFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type chatTool struct {
	Type     string       `json:"type"` // "function"
	Function chatFunction `json:"function"`
}

type chatFunctionCall struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"` // JSON string
}

type chatToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"` // "function"
	Function chatFunctionCall `json:"function"`
}

type chatResponseFormat struct {
	Type       string          `json:"type"` // "text", "json_object", "json_schema"
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

/*
	CHAT COMPLETIONS API - RESPONSE TYPES
*/

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"` // "chat.completion"
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

type chatChoice struct {
	Index        int                 `json:"index"`
	Message      chatResponseMessage `json:"message"`
	FinishReason string              `json:"finish_reason"` // "stop", "length", "function_call", "tool_calls", "content_filter"
}

type chatResponseMessage struct {
	Role         string            `json:"role"`
	Content      *string           `json:"content"` // Nullable: null for pure function/tool-call messages
	FunctionCall *chatFunctionCall `json:"function_call,omitempty"`
	ToolCalls    []chatToolCall    `json:"tool_calls,omitempty"`
}

// chatUsage is the provider's token accounting, reported verbatim.
type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

/*
	MODELS API - RESPONSE TYPES
*/

type modelsListResponse struct {
	Object string       `json:"object"` // "list"
	Data   []modelEntry `json:"data"`
}

type modelEntry struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}
