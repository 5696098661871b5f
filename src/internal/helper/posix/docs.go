// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package posix provides [POSIX]-compliant helper functions for cross-platform compatibility.
//
// The MCP demo server uses it to derive the command name shown in CLI usage
// strings and help templates from the actual binary path, so a renamed or
// installed binary documents itself correctly.
//
// Cross-platform behavior:
//
//   - Linux/macOS: "/usr/local/bin/mcp-demo-server" → "mcp-demo-server"
//   - Windows: "C:\bin\mcp-demo-server.exe" → "mcp-demo-server"
//   - Fallback: empty args → [DefaultExecutableName]
//
// [POSIX]: https://grokipedia.com/page/POSIX
package posix
