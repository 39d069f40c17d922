package openai

import (
	"context"
	"fmt"
	"io"

	"chatwire/internal/utils"
	"chatwire/providers/ai"
)

// StreamMessage implements ai.StreamProvider for the chat completions
// endpoint. It sends the request with stream=true and returns a ChatStream
// that yields incremental deltas as SSE chunks arrive.
func (provider *OpenAIProvider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	credentials, err := provider.resolve(request)
	if err != nil {
		return nil, err
	}

	chatRequest := requestToChatCompletion(request)

	// Enable streaming with usage reporting in the final chunk
	streamEnabled := true
	chatRequest.Stream = &streamEnabled
	chatRequest.StreamOptions = &streamOptions{IncludeUsage: true}

	streamURL := credentials.BaseURL + chatCompletionsRoute
	httpResponse, err := utils.DoPostStream(ctx, provider.client, streamURL, credentials.APIKey, chatRequest)
	if err != nil {
		return nil, streamStatusError(err)
	}

	sseScanner := utils.NewSSEScanner(httpResponse.Body)

	iteratorFunc := func(yield func(ai.StreamEvent, error) bool) {
		defer utils.CloseWithLog(httpResponse.Body)

		for {
			if ctx.Err() != nil {
				yield(ai.StreamEvent{}, ctx.Err())
				return
			}

			payload, sseErr := sseScanner.Next()
			if sseErr == io.EOF {
				// [DONE] sentinel or end of body
				return
			}
			if sseErr != nil {
				yield(ai.StreamEvent{}, fmt.Errorf("SSE read error: %w", sseErr))
				return
			}

			chunk, parseErr := unmarshalStreamChunk(payload)
			if parseErr != nil {
				yield(ai.StreamEvent{}, &ai.APIError{
					Message: fmt.Sprintf("failed to parse streaming chunk: %v", parseErr),
					Type:    ai.ErrorTypeParse,
				})
				return
			}

			for _, event := range chunkToStreamEvents(chunk) {
				if !yield(event, nil) {
					return // Caller stopped iterating
				}
			}
		}
	}

	return ai.NewChatStream(iteratorFunc), nil
}

// chunkToStreamEvents converts one streaming chunk into zero or more
// StreamEvents. A single chunk can carry several kinds of data at once
// (role, content, tool calls, usage), so the conversion may fan out.
func chunkToStreamEvents(chunk *chatCompletionStreamChunk) []ai.StreamEvent {
	var events []ai.StreamEvent

	// Usage arrives in the final chunk (with stream_options.include_usage)
	// which typically has an empty choices array.
	if chunk.Usage != nil {
		events = append(events, ai.StreamEvent{
			Type: ai.StreamEventUsage,
			Usage: &ai.Usage{
				PromptTokens:     chunk.Usage.PromptTokens,
				CompletionTokens: chunk.Usage.CompletionTokens,
				TotalTokens:      chunk.Usage.TotalTokens,
			},
		})
	}

	for _, choice := range chunk.Choices {
		delta := choice.Delta

		// The first chunk for a choice carries the assistant role and no
		// content; surface it as a metadata-only event so the fold can pick
		// up id, model, and role from the stream opening.
		if delta.Role != "" {
			events = append(events, ai.StreamEvent{
				Type:  ai.StreamEventMessageStart,
				Id:    chunk.ID,
				Model: chunk.Model,
				Role:  ai.MessageRole(delta.Role),
				Name:  delta.Name,
			})
		}

		if delta.Content != nil && *delta.Content != "" {
			events = append(events, ai.StreamEvent{
				Type:    ai.StreamEventContent,
				Index:   choice.Index,
				Content: *delta.Content,
				Id:      chunk.ID,
				Model:   chunk.Model,
			})
		}

		if delta.FunctionCall != nil {
			events = append(events, ai.StreamEvent{
				Type: ai.StreamEventFunctionCall,
				FunctionCall: &ai.FunctionCallDelta{
					Name:      delta.FunctionCall.Name,
					Arguments: delta.FunctionCall.Arguments,
				},
			})
		}

		for _, toolCallPart := range delta.ToolCalls {
			events = append(events, ai.StreamEvent{
				Type: ai.StreamEventToolCall,
				ToolCall: &ai.ToolCallDelta{
					Index:     toolCallPart.Index,
					ID:        toolCallPart.ID,
					Name:      toolCallPart.Function.Name,
					Arguments: toolCallPart.Function.Arguments,
				},
			})
		}

		if choice.FinishReason != nil && *choice.FinishReason != "" {
			events = append(events, ai.StreamEvent{
				Type:         ai.StreamEventDone,
				FinishReason: *choice.FinishReason,
			})
		}
	}

	return events
}
