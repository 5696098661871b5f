// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/H0llyW00dzZ/mcp-demo-server/src/internal/helper/gc"
)

// Logger defines the interface for logging operations.
// It provides methods for different log levels and formatted output.
//
// This interface supports both CLI and [MCP] server modes, allowing seamless
// switching between human-readable output and structured logging.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type Logger interface {
	// Printf formats and prints an informational message.
	Printf(format string, v ...any)
	// Println prints an informational message with a newline.
	Println(v ...any)
	// Errorf formats and prints an error message.
	Errorf(format string, v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)
}

// CLILogger implements Logger using the standard log package.
// It's designed for command-line interface output with human-readable formatting.
type CLILogger struct{ logger *log.Logger }

// NewCLILogger creates a new CLI logger writing to stderr with timestamps disabled.
// Stdout is left to command output such as JSON-RPC responses.
func NewCLILogger() *CLILogger {
	l := log.New(os.Stderr, "", 0)
	return &CLILogger{logger: l}
}

// Printf formats and prints a log message using fmt.Printf semantics.
func (c *CLILogger) Printf(format string, v ...any) { c.logger.Printf(format, v...) }

// Println prints a log message with a newline.
func (c *CLILogger) Println(v ...any) { c.logger.Println(v...) }

// Errorf prints a log message prefixed with "error: ".
func (c *CLILogger) Errorf(format string, v ...any) { c.logger.Printf("error: "+format, v...) }

// SetOutput sets the output destination for the CLI logger.
func (c *CLILogger) SetOutput(w io.Writer) { c.logger.SetOutput(w) }

// Log levels emitted by [MCPLogger].
const (
	LevelInfo  = "info"
	LevelError = "error"
)

// entry is one structured log line.
type entry struct {
	Level   string `json:"level"`
	Time    string `json:"time"`
	Message string `json:"message"`
}

// MCPLogger implements Logger for [MCP] server mode.
// Every call writes one JSON object per line. It never writes to stdout on
// its own, since the stdio transport owns stdout for protocol frames.
//
// MCPLogger is safe for concurrent use by multiple goroutines.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type MCPLogger struct {
	mu     sync.Mutex
	writer io.Writer
	silent bool
	now    func() time.Time
}

// NewMCPLogger creates a new [MCP] logger writing to writer.
// A nil writer discards output. When silent is true all output is suppressed.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
func NewMCPLogger(writer io.Writer, silent bool) *MCPLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &MCPLogger{
		writer: writer,
		silent: silent,
		now:    time.Now,
	}
}

// Printf formats and logs an info entry.
func (m *MCPLogger) Printf(format string, v ...any) {
	m.write(LevelInfo, fmt.Sprintf(format, v...))
}

// Println logs an info entry built with fmt.Sprint semantics.
func (m *MCPLogger) Println(v ...any) {
	m.write(LevelInfo, fmt.Sprint(v...))
}

// Errorf formats and logs an error entry.
func (m *MCPLogger) Errorf(format string, v ...any) {
	m.write(LevelError, fmt.Sprintf(format, v...))
}

// SetOutput sets the output destination for the MCP logger.
// A nil writer discards output.
func (m *MCPLogger) SetOutput(w io.Writer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w == nil {
		m.writer = io.Discard
	} else {
		m.writer = w
	}
}

// write renders the entry into a pooled buffer and writes it under the lock,
// so concurrent entries never interleave.
func (m *MCPLogger) write(level, msg string) {
	if m.silent {
		return
	}

	buf := gc.Default.Get()
	defer gc.Release(buf)

	e := entry{
		Level:   level,
		Time:    m.now().UTC().Format(time.RFC3339Nano),
		Message: msg,
	}
	if err := json.NewEncoder(buf).Encode(e); err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	_, _ = m.writer.Write(buf.Bytes())
}
