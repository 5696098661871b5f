// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package jsonrpc provides the [JSON-RPC 2.0] envelope types used by the MCP
// server: requests, responses, error objects and the reserved error codes.
// Request ids are carried as raw JSON so that a response echoes the caller's
// id byte for byte, keeping numbers as numbers and strings as strings.
//
// [JSON-RPC 2.0]: https://www.jsonrpc.org/specification
package jsonrpc
