// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Built-in tool names.
const (
	toolHello = "hello"
	toolEcho  = "echo"
)

// createTools creates and returns the built-in tool definitions with their handlers.
//
// The function defines the following tools:
//   - hello: Returns a greeting for the given name
//   - echo: Echoes back the given message
//
// Both tools are read-only and idempotent; the annotations say so to clients.
func createTools() []ToolDefinition {
	return []ToolDefinition{
		{
			Tool: mcp.NewTool(toolHello,
				mcp.WithDescription("Returns a greeting message"),
				mcp.WithString("name",
					mcp.Required(),
					mcp.Description("Name to greet"),
				),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
			),
			Handler: handleHello,
		},
		{
			Tool: mcp.NewTool(toolEcho,
				mcp.WithDescription("Echoes back the input"),
				mcp.WithString("message",
					mcp.Required(),
					mcp.Description("Message to echo"),
				),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
			),
			Handler: handleEcho,
		},
	}
}
