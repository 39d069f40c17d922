package anthropic

import "encoding/json"

/*
	ANTHROPIC MESSAGES API - REQUEST TYPES
*/

// anthropicRequest represents the request body for the Messages API.
type anthropicRequest struct {
	Model         string               `json:"model"`
	Messages      []anthropicMessage   `json:"messages"`
	System        string               `json:"system,omitempty"`
	MaxTokens     int                  `json:"max_tokens"` // Required by Anthropic on every request
	Temperature   *float64             `json:"temperature,omitempty"`
	TopP          *float64             `json:"top_p,omitempty"`
	StopSequences []string             `json:"stop_sequences,omitempty"`
	Tools         []anthropicTool      `json:"tools,omitempty"`
	ToolChoice    *anthropicToolChoice `json:"tool_choice,omitempty"`
	Stream        bool                 `json:"stream,omitempty"`
	Metadata      *anthropicMetadata   `json:"metadata,omitempty"`
}

// anthropicMessage represents a single message in the conversation.
type anthropicMessage struct {
	Role    string                  `json:"role"`    // "user" or "assistant"
	Content []anthropicContentBlock `json:"content"` // Array of content blocks
}

// anthropicContentBlock is a discriminated union via the Type field.
// Depending on Type, different fields are populated:
//   - "text": Text
//   - "tool_use": ID, Name, Input
//   - "tool_result": ToolUseID, Content, IsError
type anthropicContentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`          // For tool_use
	Name      string          `json:"name,omitempty"`        // For tool_use
	Input     json.RawMessage `json:"input,omitempty"`       // For tool_use (arbitrary JSON)
	ToolUseID string          `json:"tool_use_id,omitempty"` // For tool_result
	Content   json.RawMessage `json:"content,omitempty"`     // For tool_result (string or blocks)
	IsError   bool            `json:"is_error,omitempty"`    // For tool_result
}

// anthropicTool describes a tool available to the model.
type anthropicTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"` // JSON Schema for tool input
}

// anthropicToolChoice controls which tool the model should use.
type anthropicToolChoice struct {
	Type string `json:"type"`           // "auto", "any", "tool"
	Name string `json:"name,omitempty"` // Only for type="tool"
}

// anthropicMetadata contains optional request metadata.
type anthropicMetadata struct {
	UserID string `json:"user_id,omitempty"`
}

/*
	ANTHROPIC MESSAGES API - RESPONSE TYPES
*/

// anthropicResponse represents the Messages API response.
type anthropicResponse struct {
	ID           string                 `json:"id"`
	Type         string                 `json:"type"` // "message"
	Role         string                 `json:"role"` // "assistant"
	Content      []responseContentBlock `json:"content"`
	Model        string                 `json:"model"`
	StopReason   string                 `json:"stop_reason"`
	StopSequence string                 `json:"stop_sequence,omitempty"`
	Usage        anthropicUsage         `json:"usage"`
}

// responseContentBlock is a content block in the response. The Type field
// discriminates text from tool_use; unknown type values are silently skipped
// during conversion for forward-compatibility.
type responseContentBlock struct {
	Type  string          `json:"type"`            // "text", "tool_use"
	Text  string          `json:"text,omitempty"`  // For type="text"
	ID    string          `json:"id,omitempty"`    // For type="tool_use"
	Name  string          `json:"name,omitempty"`  // For type="tool_use"
	Input json.RawMessage `json:"input,omitempty"` // For type="tool_use" (arbitrary JSON)
}

// anthropicUsage reports token consumption for a single request. Anthropic
// does not send a total; it is computed during conversion.
type anthropicUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens,omitempty"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens,omitempty"`
}
