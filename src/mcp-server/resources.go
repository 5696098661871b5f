// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// metadataURI is the URI of the built-in metadata resource.
const metadataURI = "demo://metadata"

// createResources creates the built-in resource definitions.
//
// Parameters:
//   - config: Server configuration providing the reported name and version
//   - now: Clock used for the timestamp in the metadata document
//
// The function defines the following resources:
//   - demo://metadata: JSON document describing the server
func createResources(config *Config, now func() time.Time) []ResourceDefinition {
	return []ResourceDefinition{
		{
			Resource: mcp.NewResource(metadataURI, "Demo Metadata",
				mcp.WithResourceDescription("Sample metadata resource"),
				mcp.WithMIMEType("application/json"),
			),
			Handler: metadataHandler(config, now),
		},
	}
}
