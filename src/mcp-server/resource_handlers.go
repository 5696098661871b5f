// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// serverMetadata is the document served at demo://metadata.
type serverMetadata struct {
	Server       string   `json:"server"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
	Timestamp    string   `json:"timestamp"`
}

// metadataHandler returns the handler for demo://metadata.
//
// The document is rendered on every read, so its timestamp is the read time.
// Its text is indented with two spaces.
func metadataHandler(config *Config, now func() time.Time) ResourceHandler {
	return func(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		doc := serverMetadata{
			Server:       config.Server.DisplayName,
			Version:      config.Server.Version,
			Capabilities: []string{"tools", "resources"},
			Timestamp:    now().UTC().Format(timestampLayout),
		}

		text, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/json",
				Text:     string(text),
			},
		}, nil
	}
}
