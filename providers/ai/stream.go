package ai

import (
	"iter"
	"strings"
)

// StreamEventType identifies the kind of delta carried by a StreamEvent.
type StreamEventType string

const (
	// StreamEventMessageStart carries response metadata (id, model, role)
	// with no content payload. Providers emit it when the stream opens.
	StreamEventMessageStart StreamEventType = "message_start"
	// StreamEventContent indicates a text content delta for one block index.
	StreamEventContent StreamEventType = "content"
	// StreamEventFunctionCall indicates a legacy function-call delta
	// (name or argument fragment).
	StreamEventFunctionCall StreamEventType = "function_call"
	// StreamEventToolCall indicates an incremental tool call delta.
	StreamEventToolCall StreamEventType = "tool_call"
	// StreamEventUsage carries token usage metadata, typically once near the
	// end of the stream.
	StreamEventUsage StreamEventType = "usage"
	// StreamEventDone signals that the stream finished normally.
	StreamEventDone StreamEventType = "done"
)

// StreamEvent is a single delta yielded during response streaming. The Type
// field identifies the payload; the metadata fields (Id, Model, Role, Name)
// may ride along on any event and follow first-non-empty-wins semantics when
// folded.
type StreamEvent struct {
	Type  StreamEventType `json:"type"`
	Index int             `json:"index,omitempty"` // Content block index the delta applies to

	Content string `json:"content,omitempty"` // Text fragment (Type == StreamEventContent)

	Id    string      `json:"id,omitempty"`
	Model string      `json:"model,omitempty"`
	Role  MessageRole `json:"role,omitempty"`
	Name  string      `json:"name,omitempty"` // Author name delta

	FunctionCall *FunctionCallDelta `json:"function_call,omitempty"` // Type == StreamEventFunctionCall
	ToolCall     *ToolCallDelta     `json:"tool_call,omitempty"`     // Type == StreamEventToolCall

	Usage        *Usage `json:"usage,omitempty"`         // Type == StreamEventUsage
	FinishReason string `json:"finish_reason,omitempty"` // Present on StreamEventDone
	StopSequence string `json:"stop_sequence,omitempty"` // Present on StreamEventDone when the model hit a stop sequence
}

// FunctionCallDelta is an incremental update to a legacy function call.
// Name appears once; Arguments fragments concatenate across events.
type FunctionCallDelta struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ToolCallDelta is an incremental update to one tool call. Index identifies
// which call is being updated; ID and Name are only present on the first
// delta for a given index, subsequent deltas carry only Arguments fragments.
type ToolCallDelta struct {
	Index     int    `json:"index"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ChatStream wraps a streaming iterator and provides accumulation of deltas
// into a final ChatResponse. It supports range-based iteration for real-time
// token processing and a Collect method for callers who want the complete
// response.
//
// Callers must consume the stream, either by ranging over Iter (breaking out
// early is fine) or by calling Collect. The provider holds the HTTP response
// body open until the iterator completes or is abandoned via a loop break;
// constructing a ChatStream and never iterating it leaks that connection.
type ChatStream struct {
	iterator iter.Seq2[StreamEvent, error]
}

// NewChatStream creates a ChatStream from a raw streaming iterator. The
// iterator yields StreamEvent values with a nil error for normal deltas and
// a non-nil error to signal a mid-stream failure, which terminates the
// stream.
func NewChatStream(iterator iter.Seq2[StreamEvent, error]) *ChatStream {
	return &ChatStream{iterator: iterator}
}

// Iter returns the underlying iterator for use with range-over-func loops:
//
//	for event, err := range stream.Iter() {
//	    if err != nil { ... }
//	    fmt.Print(event.Content)
//	}
//
// Events arrive in emission order and each is delivered exactly once.
// Breaking out of the loop closes the underlying connection; buffered but
// undelivered events are discarded.
func (stream *ChatStream) Iter() iter.Seq2[StreamEvent, error] {
	return stream.iterator
}

// Collect consumes the entire stream and folds every delta into one
// finalized ChatResponse, equivalent to what a non-streaming call would
// have returned.
//
// Fold rules:
//   - text fragments concatenate per content block index, in arrival order;
//   - function/tool-call names and ids are set by the first non-empty value
//     and never overwritten; argument fragments concatenate per call index;
//   - id, model, and role are set from the first event carrying them;
//   - usage overwrites rather than accumulates (it arrives once).
//
// Completion is all-or-nothing: a mid-stream error returns (nil, err) and
// the partially accumulated response is discarded.
func (stream *ChatStream) Collect() (*ChatResponse, error) {
	response := &ChatResponse{}
	var blocks []*strings.Builder
	var functionCall functionCallBuilder
	var toolCallBuilders []*toolCallBuilder

	for event, err := range stream.iterator {
		if err != nil {
			return nil, err
		}

		// Metadata rides along on any event; first non-empty value wins.
		if response.Id == "" {
			response.Id = event.Id
		}
		if response.Model == "" {
			response.Model = event.Model
		}
		if response.Role == "" {
			response.Role = event.Role
		}

		switch event.Type {
		case StreamEventContent:
			for len(blocks) <= event.Index {
				blocks = append(blocks, &strings.Builder{})
			}
			blocks[event.Index].WriteString(event.Content)

		case StreamEventFunctionCall:
			if event.FunctionCall != nil {
				functionCall.merge(event.FunctionCall)
			}

		case StreamEventToolCall:
			if event.ToolCall != nil {
				toolCallBuilders = accumulateToolCallDelta(toolCallBuilders, event.ToolCall)
			}

		case StreamEventUsage:
			if event.Usage != nil {
				response.Usage = event.Usage
			}

		case StreamEventDone:
			response.FinishReason = event.FinishReason
			if event.StopSequence != "" {
				response.StopSequence = event.StopSequence
			}

		case StreamEventMessageStart:
			// Metadata only, handled above.
		}
	}

	// Finalize accumulated content blocks in index order.
	var content strings.Builder
	for i := range blocks {
		text := blocks[i].String()
		response.ContentBlocks = append(response.ContentBlocks, ContentBlock{Type: "text", Text: text})
		content.WriteString(text)
	}
	response.Content = content.String()

	if functionCall.seen {
		response.FunctionCall = &FunctionCall{
			Name:      functionCall.name,
			Arguments: functionCall.arguments.String(),
		}
	}

	for i := range toolCallBuilders {
		builder := toolCallBuilders[i]
		response.ToolCalls = append(response.ToolCalls, ToolCall{
			ID:   builder.id,
			Type: "function",
			Function: ToolCallFunction{
				Name:      builder.name,
				Arguments: builder.arguments.String(),
			},
		})
	}

	return response, nil
}

// functionCallBuilder accumulates legacy function-call deltas.
type functionCallBuilder struct {
	seen      bool
	name      string
	arguments strings.Builder
}

func (b *functionCallBuilder) merge(delta *FunctionCallDelta) {
	b.seen = true
	if b.name == "" && delta.Name != "" {
		b.name = delta.Name
	}
	if delta.Arguments != "" {
		b.arguments.WriteString(delta.Arguments)
	}
}

// toolCallBuilder accumulates incremental tool call deltas into a complete
// ToolCall.
type toolCallBuilder struct {
	id        string
	name      string
	arguments strings.Builder
}

// accumulateToolCallDelta merges a ToolCallDelta into the running list of
// builders, growing the slice when a new call index appears. ID and name are
// set once; argument fragments append in arrival order. A delta with a
// negative index cannot belong to any call and is dropped rather than
// crashing the fold.
func accumulateToolCallDelta(builders []*toolCallBuilder, delta *ToolCallDelta) []*toolCallBuilder {
	if delta.Index < 0 {
		return builders
	}
	for len(builders) <= delta.Index {
		builders = append(builders, &toolCallBuilder{})
	}

	builder := builders[delta.Index]
	if builder.id == "" && delta.ID != "" {
		builder.id = delta.ID
	}
	if builder.name == "" && delta.Name != "" {
		builder.name = delta.Name
	}
	if delta.Arguments != "" {
		builder.arguments.WriteString(delta.Arguments)
	}

	return builders
}
