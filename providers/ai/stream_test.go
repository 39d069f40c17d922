package ai

import (
	"errors"
	"testing"
)

// streamOf builds a ChatStream that replays a fixed sequence of events,
// optionally terminated by an error.
func streamOf(events []StreamEvent, finalErr error) *ChatStream {
	return NewChatStream(func(yield func(StreamEvent, error) bool) {
		for _, event := range events {
			if !yield(event, nil) {
				return
			}
		}
		if finalErr != nil {
			yield(StreamEvent{}, finalErr)
		}
	})
}

func TestCollect_ContentConcatenation(t *testing.T) {
	stream := streamOf([]StreamEvent{
		{Type: StreamEventMessageStart, Id: "resp_1", Model: "gpt-4o", Role: RoleAssistant},
		{Type: StreamEventContent, Index: 0, Content: "Hi"},
		{Type: StreamEventContent, Index: 0, Content: " there"},
		{Type: StreamEventContent, Index: 0, Content: "!"},
		{Type: StreamEventDone, FinishReason: "stop"},
	}, nil)

	response, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect unexpected error: %v", err)
	}
	if response.Content != "Hi there!" {
		t.Errorf("Content = %q, want %q", response.Content, "Hi there!")
	}
	if response.Id != "resp_1" || response.Model != "gpt-4o" || response.Role != RoleAssistant {
		t.Errorf("metadata = %q/%q/%q", response.Id, response.Model, response.Role)
	}
	if response.FinishReason != "stop" {
		t.Errorf("FinishReason = %q", response.FinishReason)
	}
}

func TestCollect_PerIndexBlocks(t *testing.T) {
	stream := streamOf([]StreamEvent{
		{Type: StreamEventContent, Index: 0, Content: "first"},
		{Type: StreamEventContent, Index: 1, Content: "sec"},
		{Type: StreamEventContent, Index: 0, Content: " block"},
		{Type: StreamEventContent, Index: 1, Content: "ond"},
		{Type: StreamEventDone, FinishReason: "stop"},
	}, nil)

	response, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect unexpected error: %v", err)
	}
	if len(response.ContentBlocks) != 2 {
		t.Fatalf("expected 2 content blocks, got %d", len(response.ContentBlocks))
	}
	if response.ContentBlocks[0].Text != "first block" {
		t.Errorf("block 0 = %q", response.ContentBlocks[0].Text)
	}
	if response.ContentBlocks[1].Text != "second" {
		t.Errorf("block 1 = %q", response.ContentBlocks[1].Text)
	}
	if response.Content != "first blocksecond" {
		t.Errorf("Content = %q", response.Content)
	}
}

func TestCollect_MetadataFirstWins(t *testing.T) {
	stream := streamOf([]StreamEvent{
		{Type: StreamEventMessageStart, Id: "first", Model: "model-a"},
		{Type: StreamEventContent, Content: "x", Id: "second", Model: "model-b", Role: RoleAssistant},
		{Type: StreamEventDone, FinishReason: "stop"},
	}, nil)

	response, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect unexpected error: %v", err)
	}
	if response.Id != "first" {
		t.Errorf("Id = %q, first value should win", response.Id)
	}
	if response.Model != "model-a" {
		t.Errorf("Model = %q, first value should win", response.Model)
	}
	// Role was empty on the first event, so the later value fills it.
	if response.Role != RoleAssistant {
		t.Errorf("Role = %q", response.Role)
	}
}

func TestCollect_ToolCallReconstruction(t *testing.T) {
	stream := streamOf([]StreamEvent{
		{Type: StreamEventToolCall, ToolCall: &ToolCallDelta{Index: 0, ID: "call_1", Name: "get_weather"}},
		{Type: StreamEventToolCall, ToolCall: &ToolCallDelta{Index: 0, Arguments: `{"a":`}},
		{Type: StreamEventToolCall, ToolCall: &ToolCallDelta{Index: 0, Arguments: `1}`}},
		{Type: StreamEventDone, FinishReason: "tool_calls"},
	}, nil)

	response, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect unexpected error: %v", err)
	}
	if len(response.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(response.ToolCalls))
	}
	call := response.ToolCalls[0]
	if call.ID != "call_1" || call.Function.Name != "get_weather" {
		t.Errorf("tool call header = %q/%q", call.ID, call.Function.Name)
	}
	if call.Function.Arguments != `{"a":1}` {
		t.Errorf("Arguments = %q, want %q", call.Function.Arguments, `{"a":1}`)
	}
}

func TestCollect_ParallelToolCalls(t *testing.T) {
	stream := streamOf([]StreamEvent{
		{Type: StreamEventToolCall, ToolCall: &ToolCallDelta{Index: 0, ID: "call_a", Name: "alpha"}},
		{Type: StreamEventToolCall, ToolCall: &ToolCallDelta{Index: 1, ID: "call_b", Name: "beta"}},
		{Type: StreamEventToolCall, ToolCall: &ToolCallDelta{Index: 1, Arguments: `{}`}},
		{Type: StreamEventToolCall, ToolCall: &ToolCallDelta{Index: 0, Arguments: `{"x":true}`}},
		{Type: StreamEventDone, FinishReason: "tool_calls"},
	}, nil)

	response, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect unexpected error: %v", err)
	}
	if len(response.ToolCalls) != 2 {
		t.Fatalf("expected 2 tool calls, got %d", len(response.ToolCalls))
	}
	if response.ToolCalls[0].ID != "call_a" || response.ToolCalls[0].Function.Arguments != `{"x":true}` {
		t.Errorf("call 0 = %+v", response.ToolCalls[0])
	}
	if response.ToolCalls[1].ID != "call_b" || response.ToolCalls[1].Function.Arguments != `{}` {
		t.Errorf("call 1 = %+v", response.ToolCalls[1])
	}
}

// A delta whose index points at no possible call (servers can send any
// integer) must be dropped by the fold, not crash it.
func TestCollect_NegativeToolCallIndexDropped(t *testing.T) {
	stream := streamOf([]StreamEvent{
		{Type: StreamEventToolCall, ToolCall: &ToolCallDelta{Index: -1, Arguments: `{"a":1}`}},
		{Type: StreamEventToolCall, ToolCall: &ToolCallDelta{Index: 0, ID: "call_1", Name: "get_weather"}},
		{Type: StreamEventToolCall, ToolCall: &ToolCallDelta{Index: 0, Arguments: `{}`}},
		{Type: StreamEventDone, FinishReason: "tool_calls"},
	}, nil)

	response, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect unexpected error: %v", err)
	}
	if len(response.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(response.ToolCalls))
	}
	if response.ToolCalls[0].Function.Arguments != `{}` {
		t.Errorf("Arguments = %q, negative-index fragment must not leak in", response.ToolCalls[0].Function.Arguments)
	}
}

// How the server splits a token stream into deltas must not matter: folding
// single-token events and folding the same text in larger batches produce
// identical blocks.
func TestCollect_FoldIndependentOfDeltaGranularity(t *testing.T) {
	fine := streamOf([]StreamEvent{
		{Type: StreamEventContent, Index: 0, Content: "Hi"},
		{Type: StreamEventContent, Index: 0, Content: " there"},
		{Type: StreamEventContent, Index: 0, Content: "!"},
		{Type: StreamEventContent, Index: 1, Content: "sec"},
		{Type: StreamEventContent, Index: 1, Content: "ond"},
		{Type: StreamEventDone, FinishReason: "stop"},
	}, nil)

	coarse := streamOf([]StreamEvent{
		{Type: StreamEventContent, Index: 0, Content: "Hi there"},
		{Type: StreamEventContent, Index: 1, Content: "second"},
		{Type: StreamEventContent, Index: 0, Content: "!"},
		{Type: StreamEventDone, FinishReason: "stop"},
	}, nil)

	fineResponse, err := fine.Collect()
	if err != nil {
		t.Fatalf("Collect(fine) unexpected error: %v", err)
	}
	coarseResponse, err := coarse.Collect()
	if err != nil {
		t.Fatalf("Collect(coarse) unexpected error: %v", err)
	}

	if len(fineResponse.ContentBlocks) != len(coarseResponse.ContentBlocks) {
		t.Fatalf("block counts differ: %d vs %d", len(fineResponse.ContentBlocks), len(coarseResponse.ContentBlocks))
	}
	for i := range fineResponse.ContentBlocks {
		if fineResponse.ContentBlocks[i] != coarseResponse.ContentBlocks[i] {
			t.Errorf("block %d differs: %+v vs %+v", i, fineResponse.ContentBlocks[i], coarseResponse.ContentBlocks[i])
		}
	}
	if fineResponse.Content != coarseResponse.Content {
		t.Errorf("Content differs: %q vs %q", fineResponse.Content, coarseResponse.Content)
	}
}

func TestCollect_FunctionCallAccumulation(t *testing.T) {
	stream := streamOf([]StreamEvent{
		{Type: StreamEventFunctionCall, FunctionCall: &FunctionCallDelta{Name: "lookup"}},
		{Type: StreamEventFunctionCall, FunctionCall: &FunctionCallDelta{Arguments: `{"q":`}},
		{Type: StreamEventFunctionCall, FunctionCall: &FunctionCallDelta{Arguments: `"go"}`}},
		{Type: StreamEventDone, FinishReason: "function_call"},
	}, nil)

	response, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect unexpected error: %v", err)
	}
	if response.FunctionCall == nil {
		t.Fatal("FunctionCall is nil")
	}
	if response.FunctionCall.Name != "lookup" || response.FunctionCall.Arguments != `{"q":"go"}` {
		t.Errorf("FunctionCall = %+v", response.FunctionCall)
	}
}

func TestCollect_UsageOverwrites(t *testing.T) {
	stream := streamOf([]StreamEvent{
		{Type: StreamEventContent, Content: "ok"},
		{Type: StreamEventUsage, Usage: &Usage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2}},
		{Type: StreamEventUsage, Usage: &Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}},
		{Type: StreamEventDone, FinishReason: "stop"},
	}, nil)

	response, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect unexpected error: %v", err)
	}
	if response.Usage == nil || response.Usage.TotalTokens != 15 {
		t.Errorf("Usage = %+v, last value should win", response.Usage)
	}
}

func TestCollect_MidStreamErrorDiscardsPartial(t *testing.T) {
	streamErr := errors.New("connection reset")
	stream := streamOf([]StreamEvent{
		{Type: StreamEventContent, Content: "partial answer"},
	}, streamErr)

	response, err := stream.Collect()
	if err == nil {
		t.Fatal("expected mid-stream error")
	}
	if !errors.Is(err, streamErr) {
		t.Errorf("err = %v, want wrapped %v", err, streamErr)
	}
	if response != nil {
		t.Errorf("partial response must be discarded, got %+v", response)
	}
}

func TestIter_EarlyBreak(t *testing.T) {
	delivered := 0
	stream := NewChatStream(func(yield func(StreamEvent, error) bool) {
		for i := 0; i < 10; i++ {
			delivered++
			if !yield(StreamEvent{Type: StreamEventContent, Content: "x"}, nil) {
				return
			}
		}
	})

	seen := 0
	for event, err := range stream.Iter() {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_ = event
		seen++
		if seen == 3 {
			break
		}
	}

	if seen != 3 {
		t.Errorf("consumed %d events, want 3", seen)
	}
	if delivered != 3 {
		t.Errorf("producer delivered %d events after break, want 3", delivered)
	}
}
