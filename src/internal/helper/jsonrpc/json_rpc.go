// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// Version is the only protocol version accepted and emitted.
const Version = mcp.JSONRPC_VERSION

// Reserved error codes.
const (
	CodeParseError     = mcp.PARSE_ERROR
	CodeInvalidRequest = mcp.INVALID_REQUEST
	CodeMethodNotFound = mcp.METHOD_NOT_FOUND
	CodeInvalidParams  = mcp.INVALID_PARAMS
	CodeInternalError  = mcp.INTERNAL_ERROR
)

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request carries no id.
// A literal null id is treated the same as an absent one.
func (r *Request) IsNotification() bool {
	id := bytes.TrimSpace(r.ID)
	return len(id) == 0 || bytes.Equal(id, []byte("null"))
}

// Response is a JSON-RPC 2.0 response envelope.
//
// Use [NewResult] or [NewError] to build one; they guarantee that exactly one
// of Result and Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error object. It implements the error interface so
// handlers can return it directly.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// NewError builds an error response for id.
func NewError(id json.RawMessage, err *Error) Response {
	return Response{JSONRPC: Version, ID: id, Error: err}
}

// NewResult builds a success response for id. A nil result is replaced by an
// empty object so the response still carries a result member.
func NewResult(id json.RawMessage, result any) Response {
	if result == nil {
		result = struct{}{}
	}
	return Response{JSONRPC: Version, ID: id, Result: result}
}

// Errorf builds an [Error] with the given code, data and formatted message.
func Errorf(code int, data any, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Data: data}
}

// Decode parses a single request envelope.
//
// Only syntactic problems are reported here; semantic checks such as the
// protocol version belong to the dispatcher.
func Decode(data []byte) (*Request, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty request body")
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("request must be a JSON object")
	}

	var req Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// DecodeParams unmarshals raw params into dest.
//
// Absent or null params leave dest untouched, which lets methods without
// parameters, or with optional ones, accept both forms.
func DecodeParams(raw json.RawMessage, dest any) error {
	if !HasParams(raw) {
		return nil
	}
	return json.Unmarshal(bytes.TrimSpace(raw), dest)
}

// HasParams reports whether raw carries a params value other than null.
func HasParams(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) != 0 && !bytes.Equal(trimmed, []byte("null"))
}
