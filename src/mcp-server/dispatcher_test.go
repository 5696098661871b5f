// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/H0llyW00dzZ/mcp-demo-server/src/internal/helper/jsonrpc"
	"github.com/H0llyW00dzZ/mcp-demo-server/src/logger"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.March, 4, 5, 6, 7, 891_000_000, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newTestDispatcher(t *testing.T, configure ...func(*ServerBuilder)) *Dispatcher {
	t.Helper()

	b := NewServerBuilder().WithDefaults().WithClock(fixedClock)
	for _, fn := range configure {
		fn(b)
	}
	d, err := b.Build()
	require.NoError(t, err)
	return d
}

// call dispatches a raw envelope and returns the response re-decoded as generic JSON.
func call(t *testing.T, d *Dispatcher, envelope string) map[string]any {
	t.Helper()

	req, err := jsonrpc.Decode([]byte(envelope))
	require.NoError(t, err)

	raw, err := json.Marshal(d.Handle(t.Context(), req))
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func errorOf(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	require.NotContains(t, resp, "result")
	rpcErr, ok := resp["error"].(map[string]any)
	require.True(t, ok, "response has no error: %v", resp)
	return rpcErr
}

func resultOf(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	require.NotContains(t, resp, "error")
	result, ok := resp["result"].(map[string]any)
	require.True(t, ok, "response has no result: %v", resp)
	return result
}

func TestDispatcher_Ping(t *testing.T) {
	d := newTestDispatcher(t)

	resp := call(t, d, `{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	assert.Equal(t, "2.0", resp["jsonrpc"])
	assert.EqualValues(t, 1, resp["id"])

	result := resultOf(t, resp)
	assert.Equal(t, "pong", result["message"])
	assert.Equal(t, "MCP Demo Server v1.0", result["server"])
	assert.Equal(t, "2025-03-04T05:06:07.891Z", result["timestamp"])
}

func TestDispatcher_Initialize(t *testing.T) {
	d := newTestDispatcher(t)

	result := resultOf(t, call(t, d, `{"jsonrpc":"2.0","id":"init","method":"initialize","params":{"protocolVersion":"2024-11-05"}}`))
	assert.Equal(t, "2024-11-05", result["protocolVersion"])
	assert.Equal(t, map[string]any{"name": "mcp-demo-server", "version": "1.0.0"}, result["serverInfo"])
	assert.Equal(t, map[string]any{
		"tools":     map[string]any{},
		"resources": map[string]any{},
		"logging":   map[string]any{},
	}, result["capabilities"])
	assert.Contains(t, result["instructions"], "`hello`")
}

func TestDispatcher_InitializeOmitsEmptyInstructions(t *testing.T) {
	d := newTestDispatcher(t)
	d.instructions = ""

	result := resultOf(t, call(t, d, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`))
	assert.NotContains(t, result, "instructions")
}

func TestDispatcher_ToolsList(t *testing.T) {
	d := newTestDispatcher(t)

	result := resultOf(t, call(t, d, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))
	tools, ok := result["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 2)

	hello := tools[0].(map[string]any)
	assert.Equal(t, "hello", hello["name"])
	assert.Equal(t, "Returns a greeting message", hello["description"])

	schema := hello["inputSchema"].(map[string]any)
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []any{"name"}, schema["required"])
	assert.Equal(t, map[string]any{"type": "string", "description": "Name to greet"},
		schema["properties"].(map[string]any)["name"])

	echo := tools[1].(map[string]any)
	assert.Equal(t, "echo", echo["name"])
	assert.Equal(t, "Echoes back the input", echo["description"])

	for _, tool := range []map[string]any{hello, echo} {
		annotations, ok := tool["annotations"].(map[string]any)
		require.True(t, ok, "tool %v has no annotations", tool["name"])
		assert.Equal(t, true, annotations["readOnlyHint"])
		assert.Equal(t, false, annotations["destructiveHint"])
		assert.Equal(t, true, annotations["idempotentHint"])
		assert.Equal(t, false, annotations["openWorldHint"])
	}
}

func TestDispatcher_ResourcesList(t *testing.T) {
	d := newTestDispatcher(t)

	result := resultOf(t, call(t, d, `{"jsonrpc":"2.0","id":2,"method":"resources/list"}`))
	resources, ok := result["resources"].([]any)
	require.True(t, ok)
	require.Len(t, resources, 1)

	metadata := resources[0].(map[string]any)
	assert.Equal(t, "demo://metadata", metadata["uri"])
	assert.Equal(t, "Demo Metadata", metadata["name"])
	assert.Equal(t, "Sample metadata resource", metadata["description"])
	assert.Equal(t, "application/json", metadata["mimeType"])
}

func TestDispatcher_ToolsCall(t *testing.T) {
	d := newTestDispatcher(t)

	tests := []struct {
		name   string
		params string
		want   string
	}{
		{
			name:   "hello with name",
			params: `{"name":"hello","arguments":{"name":"World"}}`,
			want:   "Hello, World! This is a response from the MCP server.",
		},
		{
			name:   "hello with custom name",
			params: `{"name":"hello","arguments":{"name":"Gopher"}}`,
			want:   "Hello, Gopher! This is a response from the MCP server.",
		},
		{
			name:   "hello without arguments",
			params: `{"name":"hello"}`,
			want:   "Hello, World! This is a response from the MCP server.",
		},
		{
			name:   "hello with empty name",
			params: `{"name":"hello","arguments":{"name":""}}`,
			want:   "Hello, World! This is a response from the MCP server.",
		},
		{
			name:   "hello with number name",
			params: `{"name":"hello","arguments":{"name":42}}`,
			want:   "Hello, 42! This is a response from the MCP server.",
		},
		{
			name:   "hello with true name",
			params: `{"name":"hello","arguments":{"name":true}}`,
			want:   "Hello, true! This is a response from the MCP server.",
		},
		{
			name:   "hello with zero name",
			params: `{"name":"hello","arguments":{"name":0}}`,
			want:   "Hello, World! This is a response from the MCP server.",
		},
		{
			name:   "hello with null name",
			params: `{"name":"hello","arguments":{"name":null}}`,
			want:   "Hello, World! This is a response from the MCP server.",
		},
		{
			name:   "echo",
			params: `{"name":"echo","arguments":{"message":"hi there"}}`,
			want:   "Echo: hi there",
		},
		{
			name:   "echo without message",
			params: `{"name":"echo","arguments":{}}`,
			want:   "Echo: No message provided",
		},
		{
			name:   "echo with number message",
			params: `{"name":"echo","arguments":{"message":3.5}}`,
			want:   "Echo: 3.5",
		},
		{
			name:   "echo with false message",
			params: `{"name":"echo","arguments":{"message":false}}`,
			want:   "Echo: No message provided",
		},
		{
			name:   "echo with true message",
			params: `{"name":"echo","arguments":{"message":true}}`,
			want:   "Echo: true",
		},
		{
			name:   "echo with null arguments",
			params: `{"name":"echo","arguments":null}`,
			want:   "Echo: No message provided",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := resultOf(t, call(t, d, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":`+tt.params+`}`))

			content, ok := result["content"].([]any)
			require.True(t, ok)
			require.Len(t, content, 1)

			text := content[0].(map[string]any)
			assert.Equal(t, "text", text["type"])
			assert.Equal(t, tt.want, text["text"])
		})
	}
}

func TestDispatcher_ResourcesRead(t *testing.T) {
	d := newTestDispatcher(t)

	result := resultOf(t, call(t, d, `{"jsonrpc":"2.0","id":5,"method":"resources/read","params":{"uri":"demo://metadata"}}`))
	contents, ok := result["contents"].([]any)
	require.True(t, ok)
	require.Len(t, contents, 1)

	first := contents[0].(map[string]any)
	assert.Equal(t, "demo://metadata", first["uri"])
	assert.Equal(t, "application/json", first["mimeType"])

	text := first["text"].(string)
	assert.Contains(t, text, "\n  \"server\": \"MCP Demo Server\"")

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &doc))
	assert.Equal(t, map[string]any{
		"server":       "MCP Demo Server",
		"version":      "1.0.0",
		"capabilities": []any{"tools", "resources"},
		"timestamp":    "2025-03-04T05:06:07.891Z",
	}, doc)
}

func TestDispatcher_Errors(t *testing.T) {
	d := newTestDispatcher(t)

	tests := []struct {
		name     string
		envelope string
		code     int
		message  string
		data     map[string]any
	}{
		{
			name:     "unknown method",
			envelope: `{"jsonrpc":"2.0","id":9,"method":"foo/bar"}`,
			code:     jsonrpc.CodeMethodNotFound,
			message:  "Method not found",
			data:     map[string]any{"method": "foo/bar"},
		},
		{
			name:     "method match is case sensitive",
			envelope: `{"jsonrpc":"2.0","id":9,"method":"PING"}`,
			code:     jsonrpc.CodeMethodNotFound,
			message:  "Method not found",
			data:     map[string]any{"method": "PING"},
		},
		{
			name:     "unknown tool",
			envelope: `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"nope"}}`,
			code:     jsonrpc.CodeInvalidParams,
			message:  "Tool not found",
			data:     map[string]any{"tool": "nope"},
		},
		{
			name:     "unknown resource",
			envelope: `{"jsonrpc":"2.0","id":6,"method":"resources/read","params":{"uri":"demo://missing"}}`,
			code:     jsonrpc.CodeInvalidParams,
			message:  "Resource not found",
			data:     map[string]any{"uri": "demo://missing"},
		},
		{
			name:     "resources/read without params",
			envelope: `{"jsonrpc":"2.0","id":6,"method":"resources/read"}`,
			code:     jsonrpc.CodeInvalidParams,
			message:  "Resource not found",
			data:     map[string]any{"uri": ""},
		},
		{
			name:     "tools/call without params",
			envelope: `{"jsonrpc":"2.0","id":7,"method":"tools/call"}`,
			code:     jsonrpc.CodeInvalidParams,
			message:  "Tool not found",
			data:     map[string]any{"tool": ""},
		},
		{
			name:     "tools/call with null params",
			envelope: `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":null}`,
			code:     jsonrpc.CodeInvalidParams,
			message:  "Tool not found",
			data:     map[string]any{"tool": ""},
		},
		{
			name:     "wrong jsonrpc version",
			envelope: `{"jsonrpc":"1.0","id":8,"method":"ping"}`,
			code:     jsonrpc.CodeInvalidRequest,
			message:  "Invalid Request",
		},
		{
			name:     "empty method",
			envelope: `{"jsonrpc":"2.0","id":8,"method":""}`,
			code:     jsonrpc.CodeInvalidRequest,
			message:  "Invalid Request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, d, tt.envelope)
			rpcErr := errorOf(t, resp)
			assert.EqualValues(t, tt.code, rpcErr["code"])
			assert.Equal(t, tt.message, rpcErr["message"])
			if tt.data != nil {
				assert.Equal(t, tt.data, rpcErr["data"])
			}
		})
	}
}

func TestDispatcher_MalformedParams(t *testing.T) {
	d := newTestDispatcher(t)

	tests := []struct {
		name     string
		envelope string
	}{
		{name: "tools/call params not an object", envelope: `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":"hello"}`},
		{name: "tools/call name not a string", envelope: `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":42}}`},
		{name: "tools/call arguments not an object", envelope: `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"hello","arguments":[1]}}`},
		{name: "resources/read uri not a string", envelope: `{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":true}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rpcErr := errorOf(t, call(t, d, tt.envelope))
			assert.EqualValues(t, jsonrpc.CodeInternalError, rpcErr["code"])
			assert.Equal(t, "Internal error", rpcErr["message"])
			data, ok := rpcErr["data"].(map[string]any)
			require.True(t, ok)
			assert.NotEmpty(t, data["error"])
		})
	}
}

func TestDispatcher_IDPreserved(t *testing.T) {
	d := newTestDispatcher(t)

	tests := []struct {
		name string
		id   string
	}{
		{name: "integer", id: `7`},
		{name: "string of digits", id: `"7"`},
		{name: "string", id: `"req-abc"`},
		{name: "large integer", id: `9007199254740993`},
		{name: "fraction", id: `1.5`},
		{name: "negative", id: `-3`},
	}

	methods := []string{"ping", "tools/list", "nope"}

	for _, tt := range tests {
		for _, method := range methods {
			t.Run(tt.name+"/"+method, func(t *testing.T) {
				req, err := jsonrpc.Decode([]byte(`{"jsonrpc":"2.0","id":` + tt.id + `,"method":"` + method + `"}`))
				require.NoError(t, err)

				raw, err := json.Marshal(d.Handle(t.Context(), req))
				require.NoError(t, err)

				var resp struct {
					ID json.RawMessage `json:"id"`
				}
				require.NoError(t, json.Unmarshal(raw, &resp))
				assert.Equal(t, tt.id, string(resp.ID))
			})
		}
	}
}

func TestDispatcher_ExactlyOneOfResultOrError(t *testing.T) {
	d := newTestDispatcher(t)

	envelopes := []string{
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"echo"}}`,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"nope"}}`,
		`{"jsonrpc":"2.0","id":1,"method":"resources/list"}`,
		`{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"demo://metadata"}}`,
		`{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"x"}}`,
		`{"jsonrpc":"2.0","id":1,"method":"what"}`,
		`{"id":1,"method":"ping"}`,
	}

	for _, envelope := range envelopes {
		resp := call(t, d, envelope)
		_, hasResult := resp["result"]
		_, hasError := resp["error"]
		assert.NotEqual(t, hasResult, hasError, "envelope %s", envelope)
		assert.Equal(t, "2.0", resp["jsonrpc"])
	}
}

func TestDispatcher_Idempotent(t *testing.T) {
	d := newTestDispatcher(t)

	envelopes := []string{
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":1,"method":"resources/list"}`,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"hello","arguments":{"name":"A"}}}`,
		`{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"demo://metadata"}}`,
	}

	for _, envelope := range envelopes {
		first := call(t, d, envelope)
		second := call(t, d, envelope)
		assert.Equal(t, first, second, "envelope %s", envelope)
	}
}

func TestDispatcher_MissingIDIsNull(t *testing.T) {
	d := newTestDispatcher(t)

	req, err := jsonrpc.Decode([]byte(`{"jsonrpc":"2.0","method":"ping"}`))
	require.NoError(t, err)

	raw, err := json.Marshal(d.Handle(t.Context(), req))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"id":null`)
}

func TestDispatcher_NilRequest(t *testing.T) {
	d := newTestDispatcher(t)

	resp := d.Handle(t.Context(), nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, jsonrpc.CodeInvalidRequest, resp.Error.Code)
	assert.Equal(t, "null", string(resp.ID))
}

func TestDispatcher_HandlerFaults(t *testing.T) {
	var logs bytes.Buffer

	faulty := []ToolDefinition{
		{
			Tool: mcp.NewTool("panics"),
			Handler: func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				panic("boom")
			},
		},
		{
			Tool: mcp.NewTool("fails"),
			Handler: func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return nil, errors.New("disk on fire")
			},
		},
		{
			Tool: mcp.NewTool("rpcfails"),
			Handler: func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return nil, fmt.Errorf("wrapped: %w", jsonrpc.Errorf(-32001, map[string]any{"why": "busy"}, "Server busy"))
			},
		},
		{
			Tool: mcp.NewTool("returnsnil"),
			Handler: func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return nil, nil
			},
		},
	}

	d := newTestDispatcher(t, func(b *ServerBuilder) {
		b.WithTools(faulty...).WithLogger(logger.NewMCPLogger(&logs, false))
	})

	tests := []struct {
		tool    string
		code    int
		message string
		data    map[string]any
	}{
		{tool: "panics", code: jsonrpc.CodeInternalError, message: "Internal error", data: map[string]any{"error": "boom"}},
		{tool: "fails", code: jsonrpc.CodeInternalError, message: "Internal error", data: map[string]any{"error": "disk on fire"}},
		{tool: "rpcfails", code: -32001, message: "Server busy", data: map[string]any{"why": "busy"}},
		{tool: "returnsnil", code: jsonrpc.CodeInternalError, message: "Internal error", data: map[string]any{"error": `tool "returnsnil" returned no result`}},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			rpcErr := errorOf(t, call(t, d, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"`+tt.tool+`"}}`))
			assert.EqualValues(t, tt.code, rpcErr["code"])
			assert.Equal(t, tt.message, rpcErr["message"])
			assert.Equal(t, tt.data, rpcErr["data"])
		})
	}

	assert.Contains(t, logs.String(), "handler panic")

	// The dispatcher keeps serving after a panic.
	resultOf(t, call(t, d, `{"jsonrpc":"2.0","id":2,"method":"ping"}`))
}

func TestDispatcher_StrictArguments(t *testing.T) {
	config := DefaultConfig()
	config.Tools.StrictArguments = true
	d := newTestDispatcher(t, func(b *ServerBuilder) { b.WithConfig(config) })

	tests := []struct {
		name    string
		params  string
		wantErr bool
	}{
		{name: "valid", params: `{"name":"hello","arguments":{"name":"Ada"}}`},
		{name: "missing required", params: `{"name":"hello","arguments":{}}`, wantErr: true},
		{name: "absent arguments", params: `{"name":"echo"}`, wantErr: true},
		{name: "wrong type", params: `{"name":"echo","arguments":{"message":5}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, d, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":`+tt.params+`}`)
			if !tt.wantErr {
				resultOf(t, resp)
				return
			}

			rpcErr := errorOf(t, resp)
			assert.EqualValues(t, jsonrpc.CodeInvalidParams, rpcErr["code"])
			assert.Equal(t, "Invalid params", rpcErr["message"])
			data := rpcErr["data"].(map[string]any)
			assert.NotEmpty(t, data["tool"])
			assert.NotEmpty(t, data["errors"])
		})
	}
}

func TestDispatcher_MethodTableCoversDeclaredMethods(t *testing.T) {
	d := newTestDispatcher(t)

	assert.Len(t, d.methods, len(supportedMethods))
	for _, m := range d.Methods() {
		_, ok := d.methods[m]
		assert.True(t, ok, "method %s has no handler", m)

		resp := call(t, d, `{"jsonrpc":"2.0","id":1,"method":"`+string(m)+`","params":{"name":"echo","uri":"demo://metadata"}}`)
		if rpcErr, ok := resp["error"].(map[string]any); ok {
			assert.NotEqualValues(t, jsonrpc.CodeMethodNotFound, rpcErr["code"], "method %s", m)
		}
	}
}

func TestDispatcher_Concurrent(t *testing.T) {
	d := newTestDispatcher(t)

	envelopes := []string{
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"hello","arguments":{"name":"x"}}}`,
		`{"jsonrpc":"2.0","id":3,"method":"resources/read","params":{"uri":"demo://metadata"}}`,
		`{"jsonrpc":"2.0","id":4,"method":"tools/list"}`,
	}

	var wg sync.WaitGroup
	for i := range 64 {
		envelope := envelopes[i%len(envelopes)]
		wg.Go(func() {
			req, err := jsonrpc.Decode([]byte(envelope))
			if !assert.NoError(t, err) {
				return
			}
			resp := d.Handle(context.Background(), req)
			assert.Nil(t, resp.Error)
			assert.Equal(t, string(req.ID), string(resp.ID))
		})
	}
	wg.Wait()
}
