// Copyright (c) 2024 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package gc

import (
	"errors"
	"io"

	"github.com/valyala/bytebufferpool"
)

// ErrLimitExceeded is returned by [ReadLimited] when the reader yields more
// bytes than the allowed limit.
var ErrLimitExceeded = errors.New("payload exceeds size limit")

// Buffer defines the interface for a reusable byte buffer.
// It abstracts the [bytebufferpool.ByteBuffer] type to avoid direct dependencies.
type Buffer interface {
	Write(p []byte) (int, error)
	WriteString(s string) (int, error)
	WriteByte(c byte) error
	WriteTo(w io.Writer) (int64, error)
	ReadFrom(r io.Reader) (int64, error)
	Bytes() []byte
	String() string
	Len() int
	Set(p []byte)
	Reset()
}

// Pool defines the interface for buffer pooling.
// It abstracts the [bytebufferpool.Pool] type to avoid direct dependencies.
//
// Pool implementations must be safe for concurrent use by multiple goroutines.
type Pool interface {
	Get() Buffer
	Put(b Buffer)
}

// pool wraps [bytebufferpool.Pool] to implement Pool interface.
type pool struct{ p *bytebufferpool.Pool }

// Get returns a buffer from the pool.
func (p *pool) Get() Buffer { return p.p.Get() }

// Put returns a buffer to the pool. Buffers that did not come from a
// [bytebufferpool.Pool] are dropped.
func (p *pool) Put(b Buffer) {
	if buf, ok := b.(*bytebufferpool.ByteBuffer); ok {
		p.p.Put(buf)
	}
}

// Default is the default buffer pool used for JSON-RPC bodies, encoded
// responses and structured log lines.
//
// Example usage for reading an HTTP request body:
//
//	buf := gc.Default.Get()
//	defer gc.Release(buf)
//
//	if _, err := buf.ReadFrom(r.Body); err != nil {
//		http.Error(w, "Error reading request body", http.StatusBadRequest)
//		return
//	}
//
//	var req jsonrpc.Request
//	if err := json.Unmarshal(buf.Bytes(), &req); err != nil {
//		// ...
//	}
//
// Example usage for encoding a response:
//
//	buf := gc.Default.Get()
//	defer gc.Release(buf)
//
//	if err := json.NewEncoder(buf).Encode(resp); err != nil {
//		return err
//	}
//	_, err := buf.WriteTo(w)
var Default Pool = &pool{p: &bytebufferpool.Pool{}}

// Release resets b and returns it to [Default].
// The buffer must not be used after Release.
func Release(b Buffer) {
	if b == nil {
		return
	}
	b.Reset()
	Default.Put(b)
}

// ReadLimited reads r into a pooled buffer, refusing more than limit bytes.
//
// On success the caller owns the returned buffer and must hand it back with
// [Release]. On failure the buffer is released before returning. A limit of
// zero or less disables the check.
func ReadLimited(r io.Reader, limit int64) (Buffer, error) {
	buf := Default.Get()

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}

	n, err := buf.ReadFrom(src)
	if err != nil {
		Release(buf)
		return nil, err
	}
	if limit > 0 && n > limit {
		Release(buf)
		return nil, ErrLimitExceeded
	}

	return buf, nil
}
