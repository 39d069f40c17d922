package anthropic

import (
	"context"
	"fmt"
	"io"

	"chatwire/internal/utils"
	"chatwire/providers/ai"
)

// StreamMessage implements [ai.StreamProvider] for the Messages API. It sends
// the request with stream=true and returns a ChatStream yielding incremental
// deltas as SSE events arrive.
//
// Pre-stream errors (credential resolution, non-2xx HTTP response, network
// failure) are returned immediately. Mid-stream errors (an Anthropic "error"
// event, SSE parse failure) are yielded through the iterator.
func (provider *AnthropicProvider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	credentials, err := provider.resolve(request)
	if err != nil {
		return nil, err
	}

	wireRequest := requestToAnthropic(request)
	wireRequest.Stream = true

	streamURL := credentials.BaseURL + messagesRoute
	httpResponse, err := utils.DoPostStream(ctx, provider.client, streamURL, "", wireRequest, buildHeaders(credentials.APIKey)...)
	if err != nil {
		return nil, streamStatusError(err)
	}

	sseScanner := utils.NewSSEScanner(httpResponse.Body)

	// The iterator keeps per-stream state: tool calls get a dense zero-based
	// index assigned on their content_block_start, text blocks likewise, and
	// token counts arriving in separate events (input on message_start,
	// output on message_delta) are combined into one usage event.
	iteratorFunc := func(yield func(ai.StreamEvent, error) bool) {
		defer utils.CloseWithLog(httpResponse.Body)

		toolCallCounter := 0
		textBlockCounter := 0
		currentBlockType := ""

		inputTokens := 0
		cacheCreationTokens := 0
		cacheReadTokens := 0
		outputTokens := 0

		finishReason := ""
		stopSequence := ""

		for {
			if ctx.Err() != nil {
				yield(ai.StreamEvent{}, ctx.Err())
				return
			}

			payload, sseErr := sseScanner.Next()
			if sseErr == io.EOF {
				// message_stop already emitted the done event.
				return
			}
			if sseErr != nil {
				yield(ai.StreamEvent{}, fmt.Errorf("SSE read error: %w", sseErr))
				return
			}

			event, parseErr := unmarshalStreamEvent(payload)
			if parseErr != nil {
				yield(ai.StreamEvent{}, &ai.APIError{
					Message: fmt.Sprintf("failed to parse stream event: %v", parseErr),
					Type:    ai.ErrorTypeParse,
				})
				return
			}

			switch event.Type {

			case "message_start":
				// message_start carries the response metadata plus the initial
				// usage snapshot (input tokens and cache counters; output is
				// always 0 here). Usage is held back until message_delta.
				if event.Message == nil {
					continue
				}
				inputTokens = event.Message.Usage.InputTokens
				cacheCreationTokens = event.Message.Usage.CacheCreationInputTokens
				cacheReadTokens = event.Message.Usage.CacheReadInputTokens

				if !yield(ai.StreamEvent{
					Type:  ai.StreamEventMessageStart,
					Id:    event.Message.ID,
					Model: event.Message.Model,
					Role:  ai.MessageRole(event.Message.Role),
				}, nil) {
					return
				}

			case "content_block_start":
				// content_block_start announces which kind of block is opening.
				// Tool calls emit their header (ID + Name) immediately because
				// those fields never appear on the input_json_delta events that
				// follow.
				if event.ContentBlock == nil {
					continue
				}
				currentBlockType = event.ContentBlock.Type

				if event.ContentBlock.Type == "tool_use" {
					toolEvent := ai.StreamEvent{
						Type: ai.StreamEventToolCall,
						ToolCall: &ai.ToolCallDelta{
							Index: toolCallCounter,
							ID:    event.ContentBlock.ID,
							Name:  event.ContentBlock.Name,
						},
					}
					if !yield(toolEvent, nil) {
						return
					}
					toolCallCounter++
				}

			case "content_block_delta":
				if event.Delta == nil {
					continue
				}

				switch event.Delta.Type {
				case "text_delta":
					if event.Delta.Text != "" {
						if !yield(ai.StreamEvent{
							Type:    ai.StreamEventContent,
							Index:   textBlockCounter,
							Content: event.Delta.Text,
						}, nil) {
							return
						}
					}

				case "input_json_delta":
					// Incremental JSON for the currently open tool call.
					// toolCallCounter-1 is its index (incremented on start).
					// A delta arriving before any tool_use block opened has
					// no call to attach to and is dropped.
					if toolCallCounter == 0 {
						continue
					}
					if event.Delta.PartialJSON != "" {
						if !yield(ai.StreamEvent{
							Type: ai.StreamEventToolCall,
							ToolCall: &ai.ToolCallDelta{
								Index:     toolCallCounter - 1,
								Arguments: event.Delta.PartialJSON,
							},
						}, nil) {
							return
						}
					}
				}

			case "content_block_stop":
				// Text blocks get dense indexes in closing order so the folded
				// ContentBlocks slice has no gaps where tool_use blocks sat.
				if currentBlockType == "text" {
					textBlockCounter++
				}
				currentBlockType = ""

			case "message_delta":
				// message_delta carries the final output token count and stop
				// reason. Emit the consolidated usage event here so callers
				// always receive usage before the done event.
				if event.Usage != nil {
					outputTokens = event.Usage.OutputTokens
				}
				if event.Delta != nil {
					if event.Delta.StopReason != "" {
						finishReason = event.Delta.StopReason
					}
					if event.Delta.StopSequence != "" {
						stopSequence = event.Delta.StopSequence
					}
				}

				if !yield(ai.StreamEvent{
					Type: ai.StreamEventUsage,
					Usage: &ai.Usage{
						PromptTokens:        inputTokens,
						CompletionTokens:    outputTokens,
						TotalTokens:         inputTokens + outputTokens,
						CacheCreationTokens: cacheCreationTokens,
						CacheReadTokens:     cacheReadTokens,
					},
				}, nil) {
					return
				}

			case "message_stop":
				yield(ai.StreamEvent{
					Type:         ai.StreamEventDone,
					FinishReason: mapStopReason(finishReason),
					StopSequence: stopSequence,
				}, nil)
				return

			case "error":
				// Server-side failure mid-stream. Propagate as an iterator
				// error so Collect surfaces it and discards partial state.
				streamErr := &ai.APIError{Message: "unknown stream error", Type: "api_error"}
				if event.Error != nil {
					streamErr = &ai.APIError{Message: event.Error.Message, Type: event.Error.Type}
				}
				yield(ai.StreamEvent{}, streamErr)
				return

			case "ping":
				// Keep-alive; nothing to yield.

			default:
				// Unknown event types are skipped for forward-compatibility.
			}
		}
	}

	return ai.NewChatStream(iteratorFunc), nil
}
