package openai

import (
	"chatwire/providers/ai"
)

// requestToChatCompletion converts an ai.ChatRequest into the
// chat/completions wire shape. The canonical system prompt becomes a leading
// system message, which is the only representation this API accepts.
func requestToChatCompletion(request ai.ChatRequest) chatCompletionRequest {
	req := chatCompletionRequest{
		Model:            request.Model,
		Temperature:      request.Temperature,
		TopP:             request.TopP,
		N:                request.N,
		Stop:             request.Stop,
		Seed:             request.Seed,
		MaxTokens:        request.MaxTokens,
		PresencePenalty:  request.PresencePenalty,
		FrequencyPenalty: request.FrequencyPenalty,
		LogitBias:        request.LogitBias,
		User:             request.User,
		FunctionCall:     request.FunctionCall,
	}

	if request.SystemPrompt != "" {
		req.Messages = append(req.Messages, chatMessage{
			Role:    string(ai.RoleSystem),
			Content: request.SystemPrompt,
		})
	}

	for _, message := range request.Messages {
		req.Messages = append(req.Messages, messageToWire(message))
	}

	for _, function := range request.Functions {
		req.Functions = append(req.Functions, chatFunction{
			Name:        function.Name,
			Description: function.Description,
			Parameters:  function.Parameters,
		})
	}

	for _, tool := range request.Tools {
		req.Tools = append(req.Tools, chatTool{
			Type: tool.Type,
			Function: chatFunction{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  tool.Function.Parameters,
			},
		})
	}

	if request.ResponseFormat != nil {
		req.ResponseFormat = &chatResponseFormat{
			Type:       request.ResponseFormat.Type,
			JSONSchema: request.ResponseFormat.Schema,
		}
	}

	return req
}

func messageToWire(message ai.Message) chatMessage {
	wire := chatMessage{
		Role:       string(message.Role),
		Content:    message.Content,
		Name:       message.Name,
		ToolCallID: message.ToolCallID,
	}

	if message.FunctionCall != nil {
		wire.FunctionCall = &chatFunctionCall{
			Name:      message.FunctionCall.Name,
			Arguments: message.FunctionCall.Arguments,
		}
	}

	for _, toolCall := range message.ToolCalls {
		wire.ToolCalls = append(wire.ToolCalls, chatToolCall{
			ID:   toolCall.ID,
			Type: toolCall.Type,
			Function: chatFunctionCall{
				Name:      toolCall.Function.Name,
				Arguments: toolCall.Function.Arguments,
			},
		})
	}

	return wire
}

// responseToGeneric maps a chat/completions response onto the canonical
// shape. The first choice is the response; additional candidates (n > 1) are
// not carried through the canonical type. The message text becomes a single
// content block at index 0 so streamed and non-streamed responses share one
// shape. Usage counters are copied verbatim.
func responseToGeneric(response *chatCompletionResponse) *ai.ChatResponse {
	result := &ai.ChatResponse{
		Id:      response.ID,
		Model:   response.Model,
		Created: response.Created,
	}

	if response.Usage != nil {
		result.Usage = &ai.Usage{
			PromptTokens:     response.Usage.PromptTokens,
			CompletionTokens: response.Usage.CompletionTokens,
			TotalTokens:      response.Usage.TotalTokens,
		}
	}

	if len(response.Choices) == 0 {
		return result
	}

	choice := response.Choices[0]
	result.Role = ai.MessageRole(choice.Message.Role)
	result.FinishReason = choice.FinishReason

	if choice.Message.Content != nil {
		result.Content = *choice.Message.Content
		result.ContentBlocks = []ai.ContentBlock{{Type: "text", Text: *choice.Message.Content}}
	}

	if choice.Message.FunctionCall != nil {
		result.FunctionCall = &ai.FunctionCall{
			Name:      choice.Message.FunctionCall.Name,
			Arguments: choice.Message.FunctionCall.Arguments,
		}
	}

	for _, toolCall := range choice.Message.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, ai.ToolCall{
			ID:   toolCall.ID,
			Type: toolCall.Type,
			Function: ai.ToolCallFunction{
				Name:      toolCall.Function.Name,
				Arguments: toolCall.Function.Arguments,
			},
		})
	}

	return result
}
