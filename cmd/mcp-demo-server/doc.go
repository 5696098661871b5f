// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

// mcp-demo-server is a demonstration MCP server speaking JSON-RPC 2.0.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/mcp-demo-server/cmd/mcp-demo-server@latest
//
// # Usage
//
//	mcp-demo-server [--config FILE]            serve over stdin/stdout
//	mcp-demo-server serve [--addr ADDR]        serve over HTTP
//	mcp-demo-server call [REQUEST_JSON | -f FILE]
//	mcp-demo-server tools
//	mcp-demo-server --instructions
//
// # Methods
//
//	ping             liveness check with a server timestamp
//	initialize       protocol version, capabilities and server info
//	tools/list       the hello and echo tools
//	tools/call       run a tool by name
//	resources/list   the demo://metadata resource
//	resources/read   read a resource by URI
//
// # Configuration
//
// A JSON, YAML or TOML file given with --config or MCP_DEMO_CONFIG_FILE.
// MCP_DEMO_HTTP_ADDR overrides the HTTP listen address.
//
//	http:
//	  address: ":8080"
//	  path: /mcp
//	  allowedOrigin: "*"
//	tools:
//	  strictArguments: true
package main
