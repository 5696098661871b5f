// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
)

// Fallbacks used when an argument is missing or falsy.
const (
	defaultGreetingName = "World"
	defaultEchoMessage  = "No message provided"
)

// handleHello greets arguments.name.
func handleHello(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := textArgument(request, "name", defaultGreetingName)
	return mcp.NewToolResultText(fmt.Sprintf("Hello, %s! This is a response from the MCP server.", name)), nil
}

// handleEcho returns arguments.message prefixed with "Echo: ".
func handleEcho(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message := textArgument(request, "message", defaultEchoMessage)
	return mcp.NewToolResultText("Echo: " + message), nil
}

// textArgument renders the named argument as text, or returns fallback when
// the argument is absent, null, empty, false or zero.
func textArgument(request mcp.CallToolRequest, key, fallback string) string {
	v, ok := request.GetArguments()[key]
	if !ok {
		return fallback
	}
	switch v := v.(type) {
	case nil:
		return fallback
	case string:
		if v == "" {
			return fallback
		}
	case bool:
		if !v {
			return fallback
		}
	case float64:
		if v == 0 || math.IsNaN(v) {
			return fallback
		}
	}
	return fmt.Sprint(v)
}
