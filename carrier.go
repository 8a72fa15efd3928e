// Copyright 2026 The xtransport Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xtransport

import (
	"io"

	"github.com/kylinx/xtransport/internal/framer"
)

// Carrier is a duplex byte channel the engine reads frames from and
// writes frames to. It does not assume reliability or ordering beyond
// whatever the underlying transport itself provides, and it does not
// preserve message boundaries — frame self-description carries that
// burden instead.
type Carrier interface {
	// Read copies available bytes into dst, returning the count read.
	// Returns ErrWouldBlock if no data is currently available.
	Read(dst []byte) (int, error)

	// Write copies bytes from src into the carrier, returning the count
	// written, which may be less than len(src).
	Write(src []byte) (int, error)

	// Flush pushes any internally buffered bytes to the underlying
	// medium.
	Flush() error
}

// WriteAll writes buf to c in full, retrying partial writes, then
// flushes. It fails with ErrIOError if a write call reports zero bytes
// written without an error.
func WriteAll(c Carrier, buf []byte) error {
	written := 0
	for written < len(buf) {
		n, err := c.Write(buf[written:])
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrIOError
		}
		written += n
	}
	return c.Flush()
}

// LoopbackCarrier is an in-memory carrier for testing: data written is
// immediately available to read back.
type LoopbackCarrier struct {
	buf *RingBuffer
}

// NewLoopbackCarrier returns a LoopbackCarrier with the given internal
// buffer capacity.
func NewLoopbackCarrier(capacity int) *LoopbackCarrier {
	return &LoopbackCarrier{buf: NewRingBuffer(capacity)}
}

// Available returns the number of bytes currently buffered for reading.
func (l *LoopbackCarrier) Available() int { return l.buf.Len() }

// Clear discards all buffered bytes.
func (l *LoopbackCarrier) Clear() { l.buf.Clear() }

func (l *LoopbackCarrier) Read(dst []byte) (int, error) {
	if l.buf.IsEmpty() {
		return 0, ErrWouldBlock
	}
	return l.buf.Read(dst), nil
}

func (l *LoopbackCarrier) Write(src []byte) (int, error) {
	return l.buf.Write(src), nil
}

func (l *LoopbackCarrier) Flush() error { return nil }

// NullCarrier discards every write and never yields data to read. Useful
// for benchmarking encode overhead without I/O noise.
type NullCarrier struct {
	bytesWritten int
}

// NewNullCarrier returns a NullCarrier.
func NewNullCarrier() *NullCarrier { return &NullCarrier{} }

// BytesWritten returns the cumulative number of bytes accepted by Write.
func (n *NullCarrier) BytesWritten() int { return n.bytesWritten }

// ResetCounter zeroes the byte counter.
func (n *NullCarrier) ResetCounter() { n.bytesWritten = 0 }

func (n *NullCarrier) Read([]byte) (int, error) { return 0, ErrWouldBlock }

func (n *NullCarrier) Write(src []byte) (int, error) {
	n.bytesWritten += len(src)
	return len(src), nil
}

func (n *NullCarrier) Flush() error { return nil }

// BufferedCarrier adds read and write buffering around an inner Carrier,
// batching small writes and absorbing bursty reads.
type BufferedCarrier struct {
	inner    Carrier
	readBuf  *RingBuffer
	writeBuf *RingBuffer
	scratch  []byte
}

// NewBufferedCarrier wraps inner with read/write ring buffers of the
// given capacities.
func NewBufferedCarrier(inner Carrier, readCapacity, writeCapacity int) *BufferedCarrier {
	return &BufferedCarrier{
		inner:    inner,
		readBuf:  NewRingBuffer(readCapacity),
		writeBuf: NewRingBuffer(writeCapacity),
		scratch:  make([]byte, 256),
	}
}

// Inner returns the wrapped carrier.
func (b *BufferedCarrier) Inner() Carrier { return b.inner }

// ReadBuffered returns the number of bytes currently staged for reading.
func (b *BufferedCarrier) ReadBuffered() int { return b.readBuf.Len() }

// WriteBuffered returns the number of bytes currently staged for writing.
func (b *BufferedCarrier) WriteBuffered() int { return b.writeBuf.Len() }

func (b *BufferedCarrier) fillReadBuffer() error {
	if b.readBuf.IsFull() {
		return nil
	}
	n, err := b.inner.Read(b.scratch)
	if err != nil {
		if err == ErrWouldBlock {
			return nil
		}
		return err
	}
	b.readBuf.Write(b.scratch[:n])
	return nil
}

func (b *BufferedCarrier) drainWriteBuffer() error {
	for !b.writeBuf.IsEmpty() {
		n := b.writeBuf.Peek(b.scratch)
		written, err := b.inner.Write(b.scratch[:n])
		if err != nil {
			return err
		}
		b.writeBuf.Skip(written)
	}
	return nil
}

func (b *BufferedCarrier) Read(dst []byte) (int, error) {
	if err := b.fillReadBuffer(); err != nil {
		return 0, err
	}
	if b.readBuf.IsEmpty() {
		return 0, ErrWouldBlock
	}
	return b.readBuf.Read(dst), nil
}

func (b *BufferedCarrier) Write(src []byte) (int, error) {
	return b.writeBuf.Write(src), nil
}

func (b *BufferedCarrier) Flush() error {
	if err := b.drainWriteBuffer(); err != nil {
		return err
	}
	return b.inner.Flush()
}

// StreamCarrier adapts an io.ReadWriter (a net.Conn, a Unix domain socket,
// vsock, or any other raw byte-stream transport) into a Carrier using
// internal/framer to impose message boundaries. Each xtransport wire
// frame travels as exactly one framer message: a 4-byte length prefix
// followed by the frame's bytes.
//
// Engine reads a frame in two calls — FrameHeaderSize bytes, then the
// payload once it knows payloadLen — so StreamCarrier cannot hand framer's
// message boundaries to Engine directly. Instead it drains one whole
// framer message per underlying Read into readBuf and serves Engine's
// byte-granular reads out of that ring.
type StreamCarrier struct {
	rw      io.ReadWriter
	readBuf *RingBuffer
	scratch []byte
}

// NewStreamCarrier wraps rw with framer's message-boundary codec. bufSize
// bounds the largest single frame StreamCarrier can stage for reading and
// should be at least MaxFrameSize.
func NewStreamCarrier(rw io.ReadWriter, bufSize int) *StreamCarrier {
	return &StreamCarrier{
		rw:      framer.NewReadWriter(rw, rw, bufSize),
		readBuf: NewRingBuffer(bufSize),
		scratch: make([]byte, bufSize),
	}
}

func (s *StreamCarrier) Read(dst []byte) (int, error) {
	if s.readBuf.IsEmpty() {
		n, err := s.rw.Read(s.scratch)
		if err != nil {
			if err == framer.ErrWouldBlock {
				return 0, ErrWouldBlock
			}
			if err == io.EOF {
				return 0, nil
			}
			return 0, err
		}
		if n > 0 {
			s.readBuf.Write(s.scratch[:n])
		}
	}
	if s.readBuf.IsEmpty() {
		return 0, ErrWouldBlock
	}
	return s.readBuf.Read(dst), nil
}

func (s *StreamCarrier) Write(src []byte) (int, error) {
	n, err := s.rw.Write(src)
	if err == framer.ErrWouldBlock {
		return n, ErrWouldBlock
	}
	return n, err
}

// Flush is a no-op: framer.ReadWriter.Write issues one underlying Write
// per message and does not buffer internally.
func (s *StreamCarrier) Flush() error { return nil }
