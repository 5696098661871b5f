// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package mcpserver provides a demonstration [MCP] server speaking JSON-RPC 2.0.
//
// The [Dispatcher] routes the methods ping, initialize, tools/list,
// tools/call, resources/list and resources/read against an immutable
// catalog of tools and resources, and turns every outcome into a response
// that echoes the request id. It is built with [ServerBuilder] and served
// over HTTP ([HTTPHandler], [Serve]) or newline-delimited stdio
// ([ServeStdio]). [CLIFramework] wires both transports into a Cobra command
// line together with configuration loading.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
package mcpserver
