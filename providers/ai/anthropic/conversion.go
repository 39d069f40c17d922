package anthropic

import (
	"encoding/json"
	"strings"

	"chatwire/providers/ai"
)

// defaultMaxTokens is applied when the request does not set MaxTokens.
// Anthropic requires max_tokens on every request, unlike chat/completions
// where it is optional.
const defaultMaxTokens = 4096

// requestToAnthropic converts an ai.ChatRequest into the Messages API wire
// shape. The canonical system prompt maps to the top-level system field and
// Stop maps to stop_sequences. Fields with no Anthropic counterpart (n, seed,
// penalties, logit_bias, legacy functions, response_format) are dropped.
func requestToAnthropic(request ai.ChatRequest) anthropicRequest {
	req := anthropicRequest{
		Model:         request.Model,
		Messages:      buildMessages(request.Messages),
		System:        request.SystemPrompt,
		Temperature:   request.Temperature,
		TopP:          request.TopP,
		StopSequences: request.Stop,
		MaxTokens:     defaultMaxTokens,
	}

	if request.MaxTokens != nil && *request.MaxTokens > 0 {
		req.MaxTokens = *request.MaxTokens
	}

	if request.User != "" {
		req.Metadata = &anthropicMetadata{UserID: request.User}
	}

	for _, tool := range request.Tools {
		entry := anthropicTool{
			Name:        tool.Function.Name,
			Description: tool.Function.Description,
			InputSchema: tool.Function.Parameters,
		}
		if entry.InputSchema == nil {
			// input_schema is mandatory; send an empty object schema so the
			// request remains valid.
			entry.InputSchema = json.RawMessage(`{"type":"object","properties":{}}`)
		}
		req.Tools = append(req.Tools, entry)
	}

	return req
}

// buildMessages converts canonical messages into Anthropic message objects.
//
// Anthropic requires strictly alternating user/assistant turns. Consecutive
// tool-result messages are therefore merged into a single user message with
// multiple tool_result content blocks, which is the only layout the API
// accepts.
func buildMessages(messages []ai.Message) []anthropicMessage {
	var result []anthropicMessage

	for _, msg := range messages {
		switch msg.Role {
		case ai.RoleAssistant:
			assistantMsg := anthropicMessage{Role: "assistant"}

			if msg.Content != "" {
				assistantMsg.Content = append(assistantMsg.Content, anthropicContentBlock{
					Type: "text",
					Text: msg.Content,
				})
			}

			for _, toolCall := range msg.ToolCalls {
				assistantMsg.Content = append(assistantMsg.Content, anthropicContentBlock{
					Type:  "tool_use",
					ID:    toolCall.ID,
					Name:  toolCall.Function.Name,
					Input: json.RawMessage(toolCall.Function.Arguments),
				})
			}

			if len(assistantMsg.Content) > 0 {
				result = append(result, assistantMsg)
			}

		case ai.RoleTool, ai.RoleFunction:
			// Marshal the tool result as a JSON string so Anthropic receives a
			// well-formed JSON value in the content field.
			toolResultContent, err := json.Marshal(msg.Content)
			if err != nil {
				toolResultContent = []byte(`"` + msg.Content + `"`)
			}

			toolResultBlock := anthropicContentBlock{
				Type:      "tool_result",
				ToolUseID: msg.ToolCallID,
				Content:   toolResultContent,
			}

			// Merge consecutive tool results into a single user message.
			// Anthropic forbids two consecutive user turns, so multiple tool
			// responses must be combined into one message.
			if len(result) > 0 && isAllToolResults(result[len(result)-1]) {
				last := &result[len(result)-1]
				last.Content = append(last.Content, toolResultBlock)
			} else {
				result = append(result, anthropicMessage{
					Role:    "user",
					Content: []anthropicContentBlock{toolResultBlock},
				})
			}

		default:
			// User messages, plus system messages that were placed in the
			// message list instead of SystemPrompt. Handle the latter as user
			// turns to avoid a silent drop.
			result = append(result, anthropicMessage{
				Role:    "user",
				Content: []anthropicContentBlock{{Type: "text", Text: msg.Content}},
			})
		}
	}

	return result
}

// isAllToolResults reports whether every content block in msg is a
// tool_result block, identifying the last message as a mergeable tool-result
// turn.
func isAllToolResults(msg anthropicMessage) bool {
	if msg.Role != "user" || len(msg.Content) == 0 {
		return false
	}
	for _, block := range msg.Content {
		if block.Type != "tool_result" {
			return false
		}
	}
	return true
}

// responseToGeneric converts a Messages API response to the canonical
// [ai.ChatResponse]. Each text block becomes one entry in ContentBlocks and
// Content is their concatenation, matching what the streaming fold produces.
// Unknown block types are silently skipped for forward-compatibility.
func responseToGeneric(response *anthropicResponse) *ai.ChatResponse {
	result := &ai.ChatResponse{
		Id:           response.ID,
		Model:        response.Model,
		Role:         ai.MessageRole(response.Role),
		FinishReason: mapStopReason(response.StopReason),
		StopSequence: response.StopSequence,
	}

	var content strings.Builder
	for _, block := range response.Content {
		switch block.Type {
		case "text":
			result.ContentBlocks = append(result.ContentBlocks, ai.ContentBlock{
				Type: "text",
				Text: block.Text,
			})
			content.WriteString(block.Text)

		case "tool_use":
			result.ToolCalls = append(result.ToolCalls, ai.ToolCall{
				ID:   block.ID,
				Type: "function",
				Function: ai.ToolCallFunction{
					Name: block.Name,
					// Input is already a JSON object; carry it as the string
					// form that ToolCallFunction.Arguments expects.
					Arguments: string(block.Input),
				},
			})
		}
	}
	result.Content = content.String()

	// Anthropic reports input and output separately; the total is derived.
	// Cache counters are sub-counts of input tokens and are carried verbatim.
	result.Usage = &ai.Usage{
		PromptTokens:        response.Usage.InputTokens,
		CompletionTokens:    response.Usage.OutputTokens,
		TotalTokens:         response.Usage.InputTokens + response.Usage.OutputTokens,
		CacheCreationTokens: response.Usage.CacheCreationInputTokens,
		CacheReadTokens:     response.Usage.CacheReadInputTokens,
	}

	return result
}

// mapStopReason converts an Anthropic stop_reason value to the canonical
// finish_reason vocabulary shared with chat/completions.
func mapStopReason(stopReason string) string {
	switch stopReason {
	case "end_turn", "stop_sequence":
		return "stop"
	case "tool_use":
		return "tool_calls"
	case "max_tokens":
		return "length"
	case "":
		return ""
	default:
		return "stop"
	}
}
