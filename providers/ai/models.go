package ai

import "encoding/json"

/*
	##### PROVIDER INPUT #####
*/

// ChatRequest is the canonical representation of a chat completion request.
// It is provider-agnostic: the openai and anthropic packages each translate
// it into their own wire shape. All sampling parameters are optional; nil or
// zero values are omitted on the wire.
type ChatRequest struct {
	Model        string    `json:"model"`
	SystemPrompt string    `json:"system_prompt,omitempty"` // Sent as a leading system message (OpenAI) or top-level system field (Anthropic)
	Messages     []Message `json:"messages"`

	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	N           *int     `json:"n,omitempty"` // Candidate count; Anthropic always generates one

	// Stop sequences. The providers document a maximum of 4; the value is
	// passed through unchecked and the service enforces its own limit.
	Stop []string `json:"stop,omitempty"`

	Seed             *int               `json:"seed,omitempty"`
	MaxTokens        *int               `json:"max_tokens,omitempty"`
	PresencePenalty  *float64           `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64           `json:"frequency_penalty,omitempty"`
	LogitBias        map[string]float64 `json:"logit_bias,omitempty"`
	User             string             `json:"user,omitempty"` // End-user identifier for abuse monitoring

	// Legacy function-calling surface and its tools successor. A request may
	// carry either; FunctionCall forces a specific function ("auto", "none",
	// or {"name": ...}) and is passed through as raw JSON.
	Functions    []FunctionDefinition `json:"functions,omitempty"`
	FunctionCall json.RawMessage      `json:"function_call,omitempty"`
	Tools        []Tool               `json:"tools,omitempty"`

	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`

	// Credentials override the process-wide default for this call only.
	// Never serialized.
	Credentials *Credentials `json:"-"`
}

// Message represents a single turn in a conversation.
//
// ToolCallID is meaningful only when Role is [RoleTool]; ToolCalls is
// populated only when Role is [RoleAssistant]. These invariants are
// documented contract, not locally enforced — the service rejects
// malformed combinations.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content,omitempty"`
	Name    string      `json:"name,omitempty"` // Author name in multi-user chats, or tool name for role=tool

	FunctionCall *FunctionCall `json:"function_call,omitempty"` // For role=assistant using legacy functions
	ToolCallID   string        `json:"tool_call_id,omitempty"`  // For role=tool, links to the call being answered
	ToolCalls    []ToolCall    `json:"tool_calls,omitempty"`    // For role=assistant requesting tools
}

// FunctionDefinition describes a function the model may call. Parameters is
// a freeform JSON Schema document carried verbatim to the wire.
type FunctionDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// Tool wraps a function definition in the current tools surface.
type Tool struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// ResponseFormat requests a particular output shape from the model.
type ResponseFormat struct {
	Type   string          `json:"type"` // "text", "json_object", "json_schema"
	Schema json.RawMessage `json:"json_schema,omitempty"`
}

/*
	##### PROVIDER OUTPUT #####
*/

// ChatResponse is the canonical completed response. Both providers map into
// this shape: Anthropic's content block list is carried in ContentBlocks and
// OpenAI's single message text becomes a one-element block list. Content is
// the concatenation of all text blocks in order, as a convenience for the
// common single-block case.
type ChatResponse struct {
	Id            string         `json:"id"`
	Model         string         `json:"model"`
	Role          MessageRole    `json:"role,omitempty"`
	Created       int64          `json:"created,omitempty"`
	Content       string         `json:"content"`
	ContentBlocks []ContentBlock `json:"content_blocks,omitempty"`
	FunctionCall  *FunctionCall  `json:"function_call,omitempty"`
	ToolCalls     []ToolCall     `json:"tool_calls,omitempty"`
	FinishReason  string         `json:"finish_reason,omitempty"`
	StopSequence  string         `json:"stop_sequence,omitempty"` // The matched stop sequence, when the model stopped on one
	Usage         *Usage         `json:"usage,omitempty"`
}

// ContentBlock is one typed unit of response content.
type ContentBlock struct {
	Type string `json:"type"` // "text"
	Text string `json:"text"`
}

// Usage reports token accounting for a single request. Provider counters are
// carried verbatim: OpenAI fills prompt/completion/total as reported;
// Anthropic fills prompt (input), completion (output), and the cache
// counters, with TotalTokens derived as input+output since the wire carries
// no total.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	CacheCreationTokens int `json:"cache_creation_tokens,omitempty"`
	CacheReadTokens     int `json:"cache_read_tokens,omitempty"`
}

// Model describes one entry from a provider's model listing.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object,omitempty"`
	Created int64  `json:"created,omitempty"`
	OwnedBy string `json:"owned_by,omitempty"`
}

/*
	##### SHARED #####
*/

// FunctionCall is a completed legacy function call: a name plus the full
// argument JSON as a string.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCall represents a tool invocation requested by the model.
type ToolCall struct {
	ID       string           `json:"id,omitempty"`
	Type     string           `json:"type"` // "function"
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction carries the callee name and argument JSON of a tool call.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

// MessageRole represents the author of a message; compatible with string.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleFunction  MessageRole = "function" // Legacy function output
	RoleTool      MessageRole = "tool"
)
