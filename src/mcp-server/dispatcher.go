// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/H0llyW00dzZ/mcp-demo-server/src/internal/helper/jsonrpc"
	"github.com/H0llyW00dzZ/mcp-demo-server/src/internal/registry"
	"github.com/H0llyW00dzZ/mcp-demo-server/src/logger"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/xeipuuv/gojsonschema"
)

// supportedMethods is the closed set of methods the dispatcher routes.
var supportedMethods = []mcp.MCPMethod{
	mcp.MethodPing,
	mcp.MethodInitialize,
	mcp.MethodToolsList,
	mcp.MethodToolsCall,
	mcp.MethodResourcesList,
	mcp.MethodResourcesRead,
}

// methodHandler executes one method. A returned *jsonrpc.Error is sent as is;
// any other error becomes an internal error.
type methodHandler func(ctx context.Context, params json.RawMessage) (any, error)

// Dispatcher routes JSON-RPC requests to method handlers and turns every
// outcome, including handler panics, into a response.
//
// A Dispatcher is immutable once built by [ServerBuilder] and is safe for
// concurrent use.
type Dispatcher struct {
	config       *Config
	registry     *registry.Registry
	tools        map[string]ToolHandler
	resources    map[string]ResourceHandler
	schemas      map[string]*gojsonschema.Schema
	methods      map[mcp.MCPMethod]methodHandler
	instructions string
	now          func() time.Time
	log          logger.Logger
}

// methodTable binds every supported method to its handler.
func (d *Dispatcher) methodTable() map[mcp.MCPMethod]methodHandler {
	handlers := map[mcp.MCPMethod]methodHandler{
		mcp.MethodPing:          d.handlePing,
		mcp.MethodInitialize:    d.handleInitialize,
		mcp.MethodToolsList:     d.handleToolsList,
		mcp.MethodToolsCall:     d.handleToolsCall,
		mcp.MethodResourcesList: d.handleResourcesList,
		mcp.MethodResourcesRead: d.handleResourcesRead,
	}

	table := make(map[mcp.MCPMethod]methodHandler, len(supportedMethods))
	for _, m := range supportedMethods {
		h, ok := handlers[m]
		if !ok {
			panic(fmt.Sprintf("mcpserver: no handler for method %q", m))
		}
		table[m] = h
	}
	return table
}

// Methods returns the methods this dispatcher routes, in declaration order.
func (d *Dispatcher) Methods() []mcp.MCPMethod { return slices.Clone(supportedMethods) }

// Registry returns the catalog of tools and resources.
func (d *Dispatcher) Registry() *registry.Registry { return d.registry }

// Config returns the configuration the dispatcher was built with.
func (d *Dispatcher) Config() *Config { return d.config }

// Instructions returns the instructions sent in the initialize result.
func (d *Dispatcher) Instructions() string { return d.instructions }

// Handle executes req and returns its response. It never panics and never
// returns a response without exactly one of result or error.
//
// The response id is the request id byte for byte, so numbers stay numbers
// and strings stay strings. A request without id is answered with a null id;
// transports decide whether such a response is sent at all.
func (d *Dispatcher) Handle(ctx context.Context, req *jsonrpc.Request) (resp jsonrpc.Response) {
	id := responseID(req)

	defer func() {
		if r := recover(); r != nil {
			method := ""
			if req != nil {
				method = req.Method
			}
			d.log.Errorf("handler panic: method=%s panic=%v", method, r)
			resp = jsonrpc.NewError(id, internalError(fmt.Errorf("%v", r)))
		}
	}()

	if req == nil {
		return jsonrpc.NewError(id, invalidRequest("missing request"))
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonrpc.Version {
		return jsonrpc.NewError(id, invalidRequest(fmt.Sprintf("unsupported jsonrpc version %q", req.JSONRPC)))
	}
	if req.Method == "" {
		return jsonrpc.NewError(id, invalidRequest("missing method"))
	}

	handler, ok := d.methods[mcp.MCPMethod(req.Method)]
	if !ok {
		return jsonrpc.NewError(id, jsonrpc.Errorf(jsonrpc.CodeMethodNotFound,
			map[string]any{"method": req.Method}, "Method not found"))
	}

	result, err := handler(ctx, req.Params)
	if err != nil {
		var rpcErr *jsonrpc.Error
		if errors.As(err, &rpcErr) {
			return jsonrpc.NewError(id, rpcErr)
		}
		return jsonrpc.NewError(id, internalError(err))
	}

	return jsonrpc.NewResult(id, result)
}

// responseID returns the id to echo, or null when the request has none.
func responseID(req *jsonrpc.Request) json.RawMessage {
	if req == nil || len(req.ID) == 0 {
		return json.RawMessage("null")
	}
	return req.ID
}

func internalError(err error) *jsonrpc.Error {
	return jsonrpc.Errorf(jsonrpc.CodeInternalError, map[string]any{"error": err.Error()}, "Internal error")
}

func invalidRequest(reason string) *jsonrpc.Error {
	return jsonrpc.Errorf(jsonrpc.CodeInvalidRequest, map[string]any{"error": reason}, "Invalid Request")
}
