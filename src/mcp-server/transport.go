// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/H0llyW00dzZ/mcp-demo-server/src/internal/helper/gc"
	"github.com/H0llyW00dzZ/mcp-demo-server/src/internal/helper/jsonrpc"
	"github.com/H0llyW00dzZ/mcp-demo-server/src/logger"
	"github.com/google/uuid"
	sdkjsonrpc "github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

// corsAllowHeaders is sent on every HTTP response, including preflight.
const corsAllowHeaders = "authorization, x-client-info, apikey, content-type"

// headerRequestID carries the per-call correlation id.
const headerRequestID = "X-Request-Id"

// envelopeWrapper is the alternate HTTP body form {"request": <envelope>}.
type envelopeWrapper struct {
	Request json.RawMessage `json:"request"`
}

// formatError is the body of a 4xx reply to a request that is not JSON-RPC at all.
type formatError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HTTPHandler serves the dispatcher as a JSON-RPC over HTTP endpoint.
//
// Each POST carries one request, either bare or wrapped as {"request": ...},
// and receives one response. Requests are handled concurrently.
type HTTPHandler struct {
	dispatcher *Dispatcher
	log        logger.Logger
}

// NewHTTPHandler creates an HTTP handler for d. A nil logger discards output.
func NewHTTPHandler(d *Dispatcher, l logger.Logger) *HTTPHandler {
	if l == nil {
		l = logger.NewMCPLogger(io.Discard, true)
	}
	return &HTTPHandler{dispatcher: d, log: l}
}

// NewServeMux mounts h on the configured path.
func (h *HTTPHandler) NewServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(h.dispatcher.Config().HTTP.Path, h)
	return mux
}

// ServeHTTP implements [http.Handler].
//
// Status codes:
//   - 200: a JSON-RPC response, whether it carries a result or an error
//   - 202: the request was a notification, no body
//   - 400: the body is not a JSON-RPC envelope
//   - 405: any method other than POST and OPTIONS
//   - 413: the body exceeds http.maxBodyBytes
func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cfg := h.dispatcher.Config()

	w.Header().Set("Access-Control-Allow-Origin", cfg.HTTP.AllowedOrigin)
	w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		w.Header().Set("Allow", "POST, OPTIONS")
		h.writeJSON(w, http.StatusMethodNotAllowed, formatError{Error: "Method not allowed"})
		return
	}

	requestID := uuid.NewString()
	w.Header().Set(headerRequestID, requestID)
	start := time.Now()

	body, err := gc.ReadLimited(r.Body, cfg.HTTP.MaxBodyBytes)
	if err != nil {
		if errors.Is(err, gc.ErrLimitExceeded) {
			h.log.Errorf("transport=http request_id=%s rejected: body larger than %d bytes", requestID, cfg.HTTP.MaxBodyBytes)
			h.writeJSON(w, http.StatusRequestEntityTooLarge, formatError{Error: "Request too large", Details: err.Error()})
			return
		}
		h.log.Errorf("transport=http request_id=%s failed to read body: %v", requestID, err)
		h.writeJSON(w, http.StatusBadRequest, formatError{Error: "Invalid request format", Details: err.Error()})
		return
	}
	defer gc.Release(body)

	req, err := decodeHTTPEnvelope(body.Bytes())
	if err != nil {
		h.log.Errorf("transport=http request_id=%s invalid body: %v", requestID, err)
		h.writeJSON(w, http.StatusBadRequest, formatError{Error: "Invalid request format", Details: err.Error()})
		return
	}

	resp := h.dispatcher.Handle(r.Context(), req)
	logCall(h.log, "http", requestID, req, resp, time.Since(start))

	// An envelope too broken to be a notification is still answered.
	if req.IsNotification() && (resp.Error == nil || resp.Error.Code != jsonrpc.CodeInvalidRequest) {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// writeJSON encodes v through a pooled buffer so a failed encode never leaves
// a partial body on the wire.
func (h *HTTPHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	buf := gc.Default.Get()
	defer gc.Release(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		h.log.Errorf("transport=http failed to encode response: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.Errorf("transport=http failed to write response: %v", err)
	}
}

// decodeHTTPEnvelope accepts either a bare envelope or {"request": envelope}.
func decodeHTTPEnvelope(body []byte) (*jsonrpc.Request, error) {
	req, err := jsonrpc.Decode(body)
	if err != nil {
		return nil, err
	}

	// A bare envelope always has a method; the wrapper never does.
	if req.Method == "" {
		var wrapper envelopeWrapper
		if err := json.Unmarshal(body, &wrapper); err == nil && jsonrpc.HasParams(wrapper.Request) {
			return jsonrpc.Decode(wrapper.Request)
		}
	}
	return req, nil
}

// ServeStdio serves d over newline-delimited JSON-RPC until in reaches EOF or
// ctx is cancelled.
//
// Parameters:
//   - ctx: Cancelling it stops the loop; the returned error is ctx.Err()
//   - d: Dispatcher executing the requests
//   - in: Source of request lines
//   - out: Destination of response lines
//   - l: Logger for per-call lines, typically writing to stderr
//
// Lines that are not JSON produce a -32700 response with a null id. Lines
// that are JSON but not a JSON-RPC request produce -32600. Notifications and
// responses from the peer are not answered. Requests are served one at a time.
func ServeStdio(ctx context.Context, d *Dispatcher, in io.Reader, out io.Writer, l logger.Logger) error {
	if l == nil {
		l = logger.NewMCPLogger(io.Discard, true)
	}

	limit := int(d.Config().HTTP.MaxBodyBytes) + 1
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, min(64*1024, limit)), limit)

	lines := make(chan []byte)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			line := bytes.Clone(scanner.Bytes())
			select {
			case lines <- line:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
		errc <- scanner.Err()
	}()

	w := bufio.NewWriter(out)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := <-errc; err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				return nil
			}
			resp, reply := handleStdioLine(ctx, d, l, line)
			if !reply {
				continue
			}
			if err := writeStdioResponse(w, resp); err != nil {
				return err
			}
		}
	}
}

// handleStdioLine executes one line and reports whether a response must be written.
func handleStdioLine(ctx context.Context, d *Dispatcher, l logger.Logger, line []byte) (jsonrpc.Response, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return jsonrpc.Response{}, false
	}

	requestID := uuid.NewString()
	start := time.Now()
	null := json.RawMessage("null")

	if !json.Valid(line) {
		l.Errorf("transport=stdio request_id=%s parse error", requestID)
		return jsonrpc.NewError(null, jsonrpc.Errorf(jsonrpc.CodeParseError,
			map[string]any{"error": "invalid JSON"}, "Parse error")), true
	}

	msg, err := sdkjsonrpc.DecodeMessage(line)
	if err != nil {
		l.Errorf("transport=stdio request_id=%s invalid message: %v", requestID, err)
		return jsonrpc.NewError(null, invalidRequest(err.Error())), true
	}

	call, ok := msg.(*sdkjsonrpc.Request)
	if !ok {
		l.Printf("transport=stdio request_id=%s ignored response message", requestID)
		return jsonrpc.Response{}, false
	}

	req, err := jsonrpc.Decode(line)
	if err != nil {
		return jsonrpc.NewError(null, invalidRequest(err.Error())), true
	}

	resp := d.Handle(ctx, req)
	logCall(l, "stdio", requestID, req, resp, time.Since(start))

	return resp, call.IsCall()
}

func writeStdioResponse(w *bufio.Writer, resp jsonrpc.Response) error {
	buf := gc.Default.Get()
	defer gc.Release(buf)

	if err := json.NewEncoder(buf).Encode(resp); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return w.Flush()
}

// logCall writes the per-call line shared by both transports.
func logCall(l logger.Logger, transport, requestID string, req *jsonrpc.Request, resp jsonrpc.Response, elapsed time.Duration) {
	id := "none"
	if !req.IsNotification() {
		id = string(req.ID)
	}
	code := 0
	if resp.Error != nil {
		code = resp.Error.Code
	}
	l.Printf("transport=%s request_id=%s method=%s id=%s code=%d duration=%s",
		transport, requestID, req.Method, id, code, elapsed)
}
