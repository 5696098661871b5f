// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package registry holds the static catalog of tools and resources an MCP
// server advertises.
//
// A [Registry] is built once with [New] and never changes afterwards. Listing
// preserves declaration order and lookups are keyed by tool name or resource
// URI. It is safe for concurrent use without locking.
//
// Example usage:
//
//	reg, err := registry.New(tools, resources)
//	if err != nil {
//		return fmt.Errorf("failed to build registry: %w", err)
//	}
//
//	if tool, ok := reg.FindTool("hello"); ok {
//		fmt.Println(tool.Description)
//	}
package registry
