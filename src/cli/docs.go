// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the client-side subcommands of the MCP demo server.
// The call command dispatches a single JSON-RPC request in-process and prints
// the response, and the tools command renders the tool and resource catalog as
// tables. The commands depend on small interfaces rather than on the server
// package, so the server wires them in without an import cycle.
package cli
