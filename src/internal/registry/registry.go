// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package registry

import (
	"errors"
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
)

var (
	// ErrEmptyName is returned when a tool has no name or a resource has no URI.
	ErrEmptyName = errors.New("registry: empty tool name or resource uri")
	// ErrDuplicateTool is returned when two tools share a name.
	ErrDuplicateTool = errors.New("registry: duplicate tool")
	// ErrDuplicateResource is returned when two resources share a URI.
	ErrDuplicateResource = errors.New("registry: duplicate resource")
)

// Registry is an immutable catalog of tool and resource descriptors.
//
// The zero value is an empty registry and is ready to use.
type Registry struct {
	tools     []mcp.Tool
	resources []mcp.Resource

	toolIndex     map[string]int
	resourceIndex map[string]int
}

// New builds a registry from the given descriptors, keeping their order.
//
// Parameters:
//   - tools: Tool descriptors, unique by name
//   - resources: Resource descriptors, unique by URI
//
// Returns:
//   - *Registry: The populated registry
//   - error: [ErrEmptyName], [ErrDuplicateTool] or [ErrDuplicateResource], wrapped with the offending key
//
// The input slices are copied, so later changes to them are not observed.
func New(tools []mcp.Tool, resources []mcp.Resource) (*Registry, error) {
	r := &Registry{
		tools:         slices.Clone(tools),
		resources:     slices.Clone(resources),
		toolIndex:     make(map[string]int, len(tools)),
		resourceIndex: make(map[string]int, len(resources)),
	}

	for i, t := range r.tools {
		if t.Name == "" {
			return nil, fmt.Errorf("%w: tool at index %d", ErrEmptyName, i)
		}
		if _, dup := r.toolIndex[t.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTool, t.Name)
		}
		r.toolIndex[t.Name] = i
	}

	for i, res := range r.resources {
		if res.URI == "" {
			return nil, fmt.Errorf("%w: resource at index %d", ErrEmptyName, i)
		}
		if _, dup := r.resourceIndex[res.URI]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateResource, res.URI)
		}
		r.resourceIndex[res.URI] = i
	}

	return r, nil
}

// ListTools returns every tool in declaration order.
// The returned slice is a copy; the schemas inside it are shared and must not be modified.
func (r *Registry) ListTools() []mcp.Tool {
	if r == nil || len(r.tools) == 0 {
		return []mcp.Tool{}
	}
	return slices.Clone(r.tools)
}

// ListResources returns every resource in declaration order.
func (r *Registry) ListResources() []mcp.Resource {
	if r == nil || len(r.resources) == 0 {
		return []mcp.Resource{}
	}
	return slices.Clone(r.resources)
}

// FindTool looks up a tool by exact, case-sensitive name.
func (r *Registry) FindTool(name string) (mcp.Tool, bool) {
	if r == nil {
		return mcp.Tool{}, false
	}
	i, ok := r.toolIndex[name]
	if !ok {
		return mcp.Tool{}, false
	}
	return r.tools[i], true
}

// FindResource looks up a resource by exact URI.
func (r *Registry) FindResource(uri string) (mcp.Resource, bool) {
	if r == nil {
		return mcp.Resource{}, false
	}
	i, ok := r.resourceIndex[uri]
	if !ok {
		return mcp.Resource{}, false
	}
	return r.resources[i], true
}
