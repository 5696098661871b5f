// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/H0llyW00dzZ/mcp-demo-server/src/internal/helper/gc"
	"github.com/H0llyW00dzZ/mcp-demo-server/src/internal/helper/jsonrpc"
	"github.com/mark3labs/mcp-go/mcp"
)

// maxPayloadBytes bounds a request read from stdin or a file.
const maxPayloadBytes = 1 << 20

// Dispatcher executes one JSON-RPC request.
type Dispatcher interface {
	Handle(ctx context.Context, req *jsonrpc.Request) jsonrpc.Response
}

// DispatcherFactory builds the dispatcher once flags have been parsed.
type DispatcherFactory func() (Dispatcher, error)

// Catalog lists the registered tools and resources.
type Catalog interface {
	ListTools() []mcp.Tool
	ListResources() []mcp.Resource
}

// CatalogFactory builds the catalog once flags have been parsed.
type CatalogFactory func() (Catalog, error)

// errAmbiguousInput is returned when a request is given both inline and with --file.
var errAmbiguousInput = errors.New("give the request either as an argument or with --file, not both")

// readPayload returns the request text from args, the named file or stdin, in that order.
func readPayload(stdin io.Reader, file string, args []string) ([]byte, error) {
	switch {
	case file != "" && len(args) > 0:
		return nil, errAmbiguousInput
	case len(args) > 0:
		return []byte(args[0]), nil
	case file != "":
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open request file: %w", err)
		}
		defer f.Close()
		return readAllLimited(f)
	default:
		return readAllLimited(stdin)
	}
}

func readAllLimited(r io.Reader) ([]byte, error) {
	buf, err := gc.ReadLimited(r, maxPayloadBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read request: %w", err)
	}
	defer gc.Release(buf)

	payload := bytes.TrimSpace(buf.Bytes())
	if len(payload) == 0 {
		return nil, errors.New("empty request")
	}
	return bytes.Clone(payload), nil
}
