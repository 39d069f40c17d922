package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"chatwire/providers/ai"
)

// writeSSE writes a typed SSE event and flushes so the client receives it
// immediately. Anthropic puts the discriminator on the "event:" line, but the
// data payload repeats it in a "type" field, which is what the scanner-side
// parsing works from.
func writeSSE(writer http.ResponseWriter, eventType, data string) {
	fmt.Fprintf(writer, "event: %s\ndata: %s\n\n", eventType, data)
	if flusher, ok := writer.(http.Flusher); ok {
		flusher.Flush()
	}
}

func TestStreamMessage_ContentStreaming(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if key := request.Header.Get("x-api-key"); key != "sk-ant-test" {
			t.Errorf("x-api-key = %q", key)
		}
		writer.Header().Set("Content-Type", "text/event-stream")

		writeSSE(writer, "message_start",
			`{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","content":[],"model":"claude-sonnet-4-20250514","stop_reason":null,"usage":{"input_tokens":25,"output_tokens":0}}}`)
		writeSSE(writer, "content_block_start",
			`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`)
		writeSSE(writer, "content_block_delta",
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hi"}}`)
		writeSSE(writer, "content_block_delta",
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":" there"}}`)
		writeSSE(writer, "content_block_delta",
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"!"}}`)
		writeSSE(writer, "content_block_stop",
			`{"type":"content_block_stop","index":0}`)
		writeSSE(writer, "message_delta",
			`{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":5}}`)
		writeSSE(writer, "message_stop",
			`{"type":"message_stop"}`)
	}))
	defer server.Close()

	provider := New()
	provider.WithCredentials(testCredentials(server.URL))

	stream, err := provider.StreamMessage(context.Background(), ai.ChatRequest{
		Model:    "claude-sonnet-4-20250514",
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "Hi"}},
	})
	if err != nil {
		t.Fatalf("StreamMessage unexpected error: %v", err)
	}

	response, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect unexpected error: %v", err)
	}

	if response.Content != "Hi there!" {
		t.Errorf("Content = %q, want %q", response.Content, "Hi there!")
	}
	if response.Id != "msg_1" || response.Model != "claude-sonnet-4-20250514" {
		t.Errorf("metadata = %q / %q", response.Id, response.Model)
	}
	if response.Role != ai.RoleAssistant {
		t.Errorf("Role = %q", response.Role)
	}
	if response.FinishReason != "stop" {
		t.Errorf("FinishReason = %q, end_turn should map to stop", response.FinishReason)
	}
	if response.Usage == nil {
		t.Fatal("Usage is nil")
	}
	if response.Usage.PromptTokens != 25 || response.Usage.CompletionTokens != 5 || response.Usage.TotalTokens != 30 {
		t.Errorf("Usage = %+v", response.Usage)
	}
}

func TestStreamMessage_ToolUseStreaming(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "text/event-stream")

		writeSSE(writer, "message_start",
			`{"type":"message_start","message":{"id":"msg_2","type":"message","role":"assistant","content":[],"model":"claude-sonnet-4-20250514","stop_reason":null,"usage":{"input_tokens":40,"output_tokens":0}}}`)
		writeSSE(writer, "content_block_start",
			`{"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"toolu_01","name":"get_weather","input":{}}}`)
		writeSSE(writer, "content_block_delta",
			`{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"a\":"}}`)
		writeSSE(writer, "content_block_delta",
			`{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"1}"}}`)
		writeSSE(writer, "content_block_stop",
			`{"type":"content_block_stop","index":0}`)
		writeSSE(writer, "message_delta",
			`{"type":"message_delta","delta":{"stop_reason":"tool_use"},"usage":{"output_tokens":15}}`)
		writeSSE(writer, "message_stop",
			`{"type":"message_stop"}`)
	}))
	defer server.Close()

	provider := New()
	provider.WithCredentials(testCredentials(server.URL))

	stream, err := provider.StreamMessage(context.Background(), ai.ChatRequest{Model: "claude-sonnet-4-20250514"})
	if err != nil {
		t.Fatalf("StreamMessage unexpected error: %v", err)
	}

	response, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect unexpected error: %v", err)
	}

	if len(response.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(response.ToolCalls))
	}
	call := response.ToolCalls[0]
	if call.ID != "toolu_01" || call.Function.Name != "get_weather" {
		t.Errorf("tool call = %+v", call)
	}
	if call.Function.Arguments != `{"a":1}` {
		t.Errorf("Arguments = %q, want %q", call.Function.Arguments, `{"a":1}`)
	}
	if response.FinishReason != "tool_calls" {
		t.Errorf("FinishReason = %q, tool_use should map to tool_calls", response.FinishReason)
	}
}

// An input_json_delta arriving before any tool_use block has opened has no
// call to attach to; the session must complete cleanly without it rather
// than crash the fold.
func TestStreamMessage_OrphanInputJSONDelta(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "text/event-stream")

		writeSSE(writer, "message_start",
			`{"type":"message_start","message":{"id":"msg_5","type":"message","role":"assistant","content":[],"model":"claude-sonnet-4-20250514","stop_reason":null,"usage":{"input_tokens":10,"output_tokens":0}}}`)
		writeSSE(writer, "content_block_delta",
			`{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"a\":1}"}}`)
		writeSSE(writer, "message_delta",
			`{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":2}}`)
		writeSSE(writer, "message_stop",
			`{"type":"message_stop"}`)
	}))
	defer server.Close()

	provider := New()
	provider.WithCredentials(testCredentials(server.URL))

	stream, err := provider.StreamMessage(context.Background(), ai.ChatRequest{Model: "claude-sonnet-4-20250514"})
	if err != nil {
		t.Fatalf("StreamMessage unexpected error: %v", err)
	}

	response, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect unexpected error: %v", err)
	}
	if len(response.ToolCalls) != 0 {
		t.Errorf("orphan delta must not create a tool call, got %+v", response.ToolCalls)
	}
	if response.FinishReason != "stop" {
		t.Errorf("FinishReason = %q", response.FinishReason)
	}
}

func TestStreamMessage_ErrorEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "text/event-stream")

		writeSSE(writer, "message_start",
			`{"type":"message_start","message":{"id":"msg_3","type":"message","role":"assistant","content":[],"model":"claude-sonnet-4-20250514","stop_reason":null,"usage":{"input_tokens":10,"output_tokens":0}}}`)
		writeSSE(writer, "content_block_start",
			`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`)
		writeSSE(writer, "content_block_delta",
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"partial"}}`)
		writeSSE(writer, "error",
			`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`)
	}))
	defer server.Close()

	provider := New()
	provider.WithCredentials(testCredentials(server.URL))

	stream, err := provider.StreamMessage(context.Background(), ai.ChatRequest{Model: "claude-sonnet-4-20250514"})
	if err != nil {
		t.Fatalf("StreamMessage unexpected error: %v", err)
	}

	response, err := stream.Collect()
	if err == nil {
		t.Fatal("expected mid-stream error from error event")
	}
	apiErr, ok := ai.AsAPIError(err)
	if !ok {
		t.Fatalf("expected *ai.APIError, got %T: %v", err, err)
	}
	if apiErr.Message != "Overloaded" || apiErr.Type != "overloaded_error" {
		t.Errorf("apiErr = %+v", apiErr)
	}
	if response != nil {
		t.Errorf("partial response must be discarded, got %+v", response)
	}
}

func TestStreamMessage_PreStreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
		writer.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	provider := New()
	provider.WithCredentials(testCredentials(server.URL))

	_, err := provider.StreamMessage(context.Background(), ai.ChatRequest{Model: "claude-sonnet-4-20250514"})
	if err == nil {
		t.Fatal("expected pre-stream error for non-2xx response")
	}
	apiErr, ok := ai.AsAPIError(err)
	if !ok {
		t.Fatalf("expected *ai.APIError, got %T: %v", err, err)
	}
	if apiErr.Type != "authentication_error" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

// A text block arriving after a tool_use block must land in its own content
// block rather than leaving a gap at the tool block's position.
func TestStreamMessage_TextAfterToolBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "text/event-stream")

		writeSSE(writer, "message_start",
			`{"type":"message_start","message":{"id":"msg_4","type":"message","role":"assistant","content":[],"model":"m","stop_reason":null,"usage":{"input_tokens":5,"output_tokens":0}}}`)
		writeSSE(writer, "content_block_start",
			`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`)
		writeSSE(writer, "content_block_delta",
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"before"}}`)
		writeSSE(writer, "content_block_stop",
			`{"type":"content_block_stop","index":0}`)
		writeSSE(writer, "content_block_start",
			`{"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"toolu_02","name":"lookup","input":{}}}`)
		writeSSE(writer, "content_block_stop",
			`{"type":"content_block_stop","index":1}`)
		writeSSE(writer, "content_block_start",
			`{"type":"content_block_start","index":2,"content_block":{"type":"text","text":""}}`)
		writeSSE(writer, "content_block_delta",
			`{"type":"content_block_delta","index":2,"delta":{"type":"text_delta","text":"after"}}`)
		writeSSE(writer, "content_block_stop",
			`{"type":"content_block_stop","index":2}`)
		writeSSE(writer, "message_delta",
			`{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":8}}`)
		writeSSE(writer, "message_stop",
			`{"type":"message_stop"}`)
	}))
	defer server.Close()

	provider := New()
	provider.WithCredentials(testCredentials(server.URL))

	stream, err := provider.StreamMessage(context.Background(), ai.ChatRequest{Model: "m"})
	if err != nil {
		t.Fatalf("StreamMessage unexpected error: %v", err)
	}

	response, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect unexpected error: %v", err)
	}

	if len(response.ContentBlocks) != 2 {
		t.Fatalf("expected 2 text blocks, got %+v", response.ContentBlocks)
	}
	if response.ContentBlocks[0].Text != "before" || response.ContentBlocks[1].Text != "after" {
		t.Errorf("blocks = %+v", response.ContentBlocks)
	}
	if len(response.ToolCalls) != 1 || response.ToolCalls[0].ID != "toolu_02" {
		t.Errorf("ToolCalls = %+v", response.ToolCalls)
	}
}
