// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/H0llyW00dzZ/mcp-demo-server/src/internal/registry"
	"github.com/H0llyW00dzZ/mcp-demo-server/src/logger"
	"github.com/H0llyW00dzZ/mcp-demo-server/src/mcp-server/templates"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/xeipuuv/gojsonschema"
)

// ToolHandler defines the signature for tool handlers that matches [MCP] server expectations.
// It processes tool calls and returns results.
//
// Parameters:
//   - ctx: Context for cancellation and timeout handling
//   - request: The MCP tool call request containing arguments and metadata
//
// Returns:
//   - The tool execution result or an error if the tool failed
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// ResourceHandler defines the signature for resource handlers that provide static or dynamic resources.
// It processes resource read requests and returns the resource contents.
//
// Parameters:
//   - ctx: Context for cancellation and timeout handling
//   - request: The MCP resource read request containing the resource URI
//
// Returns:
//   - A slice of resource contents or an error if the resource cannot be read
type ResourceHandler = func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error)

// ToolDefinition holds a tool definition and its handler.
// It pairs an MCP tool specification with its implementation function.
type ToolDefinition struct {
	Tool    mcp.Tool
	Handler ToolHandler
}

// ResourceDefinition holds a resource definition and its handler.
type ResourceDefinition struct {
	Resource mcp.Resource
	Handler  ResourceHandler
}

// ServerDependencies holds all dependencies needed to create the dispatcher.
//
// Version and Embed are only read by [CLIFramework]; the builder ignores them.
type ServerDependencies struct {
	Version      string
	Embed        templates.EmbedFS
	Config       *Config
	Tools        []ToolDefinition
	Resources    []ResourceDefinition
	Logger       logger.Logger
	Clock        func() time.Time
	Instructions string
	Defaults     bool
}

// ServerBuilder helps construct the [Dispatcher] with proper dependencies using a fluent interface.
//
// Example:
//
//	d, err := NewServerBuilder().
//	    WithConfig(config).
//	    WithDefaults().
//	    WithLogger(log).
//	    Build()
type ServerBuilder struct{ deps ServerDependencies }

// NewServerBuilder creates a new server builder with default empty dependencies.
func NewServerBuilder() *ServerBuilder { return &ServerBuilder{} }

// WithConfig sets the server configuration. A nil config means [DefaultConfig].
func (b *ServerBuilder) WithConfig(config *Config) *ServerBuilder {
	b.deps.Config = config
	return b
}

// WithTools adds tool definitions in the order they should be listed.
func (b *ServerBuilder) WithTools(tools ...ToolDefinition) *ServerBuilder {
	b.deps.Tools = append(b.deps.Tools, tools...)
	return b
}

// WithResources adds resource definitions in the order they should be listed.
func (b *ServerBuilder) WithResources(resources ...ResourceDefinition) *ServerBuilder {
	b.deps.Resources = append(b.deps.Resources, resources...)
	return b
}

// WithDefaults registers the built-in hello and echo tools and the
// demo://metadata resource ahead of anything added with WithTools or WithResources.
func (b *ServerBuilder) WithDefaults() *ServerBuilder {
	b.deps.Defaults = true
	return b
}

// WithLogger sets the logger used for handler faults. Defaults to a discarding MCPLogger.
func (b *ServerBuilder) WithLogger(l logger.Logger) *ServerBuilder {
	b.deps.Logger = l
	return b
}

// WithClock replaces time.Now for timestamps in results.
func (b *ServerBuilder) WithClock(now func() time.Time) *ServerBuilder {
	b.deps.Clock = now
	return b
}

// WithInstructions sets the instructions string returned by initialize.
// Without it, Build renders the embedded instructions template for the final catalog.
func (b *ServerBuilder) WithInstructions(instructions string) *ServerBuilder {
	b.deps.Instructions = instructions
	return b
}

// Build validates the dependencies and creates the dispatcher.
//
// Returns:
//   - *Dispatcher: Ready to handle requests, safe for concurrent use
//   - error: A registry conflict, a definition without a handler, or an input
//     schema that cannot be compiled
func (b *ServerBuilder) Build() (*Dispatcher, error) {
	deps := b.deps

	if deps.Config == nil {
		deps.Config = DefaultConfig()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewMCPLogger(io.Discard, true)
	}

	tools := deps.Tools
	resources := deps.Resources
	if deps.Defaults {
		tools = append(createTools(), tools...)
		resources = append(createResources(deps.Config, deps.Clock), resources...)
	}

	d := &Dispatcher{
		config:       deps.Config,
		tools:        make(map[string]ToolHandler, len(tools)),
		resources:    make(map[string]ResourceHandler, len(resources)),
		schemas:      make(map[string]*gojsonschema.Schema, len(tools)),
		instructions: deps.Instructions,
		now:          deps.Clock,
		log:          deps.Logger,
	}

	toolDecls := make([]mcp.Tool, 0, len(tools))
	for _, t := range tools {
		if t.Handler == nil {
			return nil, fmt.Errorf("tool %q has no handler", t.Tool.Name)
		}
		schema, err := compileInputSchema(t.Tool)
		if err != nil {
			return nil, fmt.Errorf("tool %q: %w", t.Tool.Name, err)
		}
		toolDecls = append(toolDecls, t.Tool)
		d.tools[t.Tool.Name] = t.Handler
		d.schemas[t.Tool.Name] = schema
	}

	resourceDecls := make([]mcp.Resource, 0, len(resources))
	for _, r := range resources {
		if r.Handler == nil {
			return nil, fmt.Errorf("resource %q has no handler", r.Resource.URI)
		}
		resourceDecls = append(resourceDecls, r.Resource)
		d.resources[r.Resource.URI] = r.Handler
	}

	reg, err := registry.New(toolDecls, resourceDecls)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}
	d.registry = reg
	d.methods = d.methodTable()

	if d.instructions == "" {
		text, err := loadInstructions(deps.Config, reg)
		if err != nil {
			return nil, err
		}
		d.instructions = text
	}

	return d, nil
}

// compileInputSchema compiles the tool's input schema for strict argument checks.
// A raw schema takes precedence over the structured one, matching how the tool is serialized.
func compileInputSchema(tool mcp.Tool) (*gojsonschema.Schema, error) {
	var loader gojsonschema.JSONLoader
	if len(tool.RawInputSchema) > 0 {
		loader = gojsonschema.NewBytesLoader(tool.RawInputSchema)
	} else {
		raw, err := json.Marshal(tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("failed to encode input schema: %w", err)
		}
		loader = gojsonschema.NewBytesLoader(raw)
	}

	schema, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, errors.Join(errors.New("invalid input schema"), err)
	}
	return schema, nil
}
