// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/H0llyW00dzZ/mcp-demo-server/src/internal/helper/jsonrpc"
	"github.com/H0llyW00dzZ/mcp-demo-server/src/internal/registry"
	"github.com/H0llyW00dzZ/mcp-demo-server/src/mcp-server/templates"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/xeipuuv/gojsonschema"
)

// timestampLayout renders UTC instants with millisecond precision and a Z suffix.
const timestampLayout = "2006-01-02T15:04:05.000Z"

type pingResult struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Server    string `json:"server"`
}

// emptyCapability marshals as {} to advertise a capability without options.
type emptyCapability struct{}

type serverCapabilities struct {
	Tools     emptyCapability `json:"tools"`
	Resources emptyCapability `json:"resources"`
	Logging   emptyCapability `json:"logging"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    serverCapabilities `json:"capabilities"`
	ServerInfo      serverInfo         `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitempty"`
}

type listToolsResult struct {
	Tools []mcp.Tool `json:"tools"`
}

type listResourcesResult struct {
	Resources []mcp.Resource `json:"resources"`
}

type readResourceResult struct {
	Contents []mcp.ResourceContents `json:"contents"`
}

type callToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type readResourceParams struct {
	URI string `json:"uri"`
}

func (d *Dispatcher) handlePing(_ context.Context, _ json.RawMessage) (any, error) {
	return pingResult{
		Message:   "pong",
		Timestamp: d.now().UTC().Format(timestampLayout),
		Server:    d.config.Server.Identity,
	}, nil
}

func (d *Dispatcher) handleInitialize(_ context.Context, _ json.RawMessage) (any, error) {
	return initializeResult{
		ProtocolVersion: d.config.Server.ProtocolVersion,
		ServerInfo: serverInfo{
			Name:    d.config.Server.Name,
			Version: d.config.Server.Version,
		},
		Instructions: d.instructions,
	}, nil
}

func (d *Dispatcher) handleToolsList(_ context.Context, _ json.RawMessage) (any, error) {
	return listToolsResult{Tools: d.registry.ListTools()}, nil
}

func (d *Dispatcher) handleResourcesList(_ context.Context, _ json.RawMessage) (any, error) {
	return listResourcesResult{Resources: d.registry.ListResources()}, nil
}

// handleToolsCall looks up the named tool, applies the argument policy and runs it.
//
// Absent params behave like an empty name. An unknown tool is reported as
// -32602 with the requested name. Missing arguments become an empty object,
// so handlers always see a non-nil map.
func (d *Dispatcher) handleToolsCall(ctx context.Context, raw json.RawMessage) (any, error) {
	var params callToolParams
	if err := jsonrpc.DecodeParams(raw, &params); err != nil {
		return nil, fmt.Errorf("invalid tools/call params: %w", err)
	}

	if _, ok := d.registry.FindTool(params.Name); !ok {
		return nil, jsonrpc.Errorf(jsonrpc.CodeInvalidParams,
			map[string]any{"tool": params.Name}, "Tool not found")
	}

	if params.Arguments == nil {
		params.Arguments = map[string]any{}
	}

	if d.config.Tools.StrictArguments {
		if err := d.validateArguments(params.Name, params.Arguments); err != nil {
			return nil, err
		}
	}

	request := mcp.CallToolRequest{}
	request.Method = string(mcp.MethodToolsCall)
	request.Params.Name = params.Name
	request.Params.Arguments = params.Arguments

	result, err := d.tools[params.Name](ctx, request)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("tool %q returned no result", params.Name)
	}
	return result, nil
}

// validateArguments checks args against the tool's compiled input schema.
func (d *Dispatcher) validateArguments(name string, args map[string]any) error {
	schema, ok := d.schemas[name]
	if !ok {
		return nil
	}

	res, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("failed to validate arguments: %w", err)
	}
	if res.Valid() {
		return nil
	}

	problems := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		problems = append(problems, e.String())
	}
	return jsonrpc.Errorf(jsonrpc.CodeInvalidParams,
		map[string]any{"tool": name, "errors": problems}, "Invalid params")
}

// handleResourcesRead reads the resource at params.uri.
//
// Absent params behave like an empty uri and therefore report the resource as not found.
func (d *Dispatcher) handleResourcesRead(ctx context.Context, raw json.RawMessage) (any, error) {
	var params readResourceParams
	if err := jsonrpc.DecodeParams(raw, &params); err != nil {
		return nil, fmt.Errorf("invalid resources/read params: %w", err)
	}

	if _, ok := d.registry.FindResource(params.URI); !ok {
		return nil, jsonrpc.Errorf(jsonrpc.CodeInvalidParams,
			map[string]any{"uri": params.URI}, "Resource not found")
	}

	request := mcp.ReadResourceRequest{}
	request.Method = string(mcp.MethodResourcesRead)
	request.Params.URI = params.URI

	contents, err := d.resources[params.URI](ctx, request)
	if err != nil {
		return nil, err
	}
	if contents == nil {
		contents = []mcp.ResourceContents{}
	}
	return readResourceResult{Contents: contents}, nil
}

// instructionData holds the data used to populate the MCP server instructions template.
type instructionData struct {
	DisplayName     string
	ProtocolVersion string
	StrictArguments bool
	Tools           []mcp.Tool
	Resources       []mcp.Resource
}

// loadInstructions renders the embedded instructions template for the given
// catalog and returns the text sent to MCP clients during initialization.
//
// Parameters:
//   - config: Server configuration supplying names and the argument policy
//   - reg: Registry whose tools and resources are listed
//
// Returns:
//   - string: The rendered instruction text
//   - error: If the embedded file cannot be read or template parsing fails
func loadInstructions(config *Config, reg *registry.Registry) (string, error) {
	templateBytes, err := templates.MagicEmbed.ReadFile(templates.InstructionsFile)
	if err != nil {
		return "", fmt.Errorf("failed to load MCP server instructions template: %w", err)
	}

	data := instructionData{
		DisplayName:     config.Server.DisplayName,
		ProtocolVersion: config.Server.ProtocolVersion,
		StrictArguments: config.Tools.StrictArguments,
		Tools:           reg.ListTools(),
		Resources:       reg.ListResources(),
	}

	tmpl, err := template.New("instructions").Parse(string(templateBytes))
	if err != nil {
		return "", fmt.Errorf("failed to parse instructions template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute instructions template: %w", err)
	}

	return buf.String(), nil
}
