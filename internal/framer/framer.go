// Copyright 2026 The xtransport Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package framer carries one message per Read/Write call over an
// underlying io.Reader/io.Writer pair that does not itself preserve
// message boundaries — the one building block carrier.go's StreamCarrier
// needs to turn a raw net.Conn or Unix domain socket into a
// frame-at-a-time xtransport Carrier.
//
// Adapted from hayabusa-cloud's general-purpose framer library: the same
// length-prefix-then-payload idea and the same iox.ErrWouldBlock
// non-blocking contract, trimmed to the one shape xtransport actually
// drives. The original supported a configurable byte order, three
// transport protocols (stream, seqpacket, datagram), an escaped
// variable-width length prefix up to 2^56-1 bytes, and zero-copy
// WriterTo/ReaderFrom fast paths for a general-purpose audience. None of
// that is reachable from StreamCarrier: xtransport frames are already
// capped by a 16-bit payload-length field (frame.go) well inside a fixed
// 4-byte prefix, StreamCarrier always drives one boundary-less byte
// stream, and nothing in this module needs a byte-order option since
// frame.go itself is hardwired to big-endian.
package framer

import (
	"encoding/binary"
	"errors"
	"io"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock aliases iox's non-blocking sentinel: the underlying
// reader has nothing ready, or the writer cannot currently accept more,
// without blocking the caller.
var ErrWouldBlock = iox.ErrWouldBlock

// ErrTooLong reports a message whose declared length exceeds the read
// limit given to NewReadWriter, or that does not fit the destination
// buffer passed to Read.
var ErrTooLong = errors.New("framer: message too long")

// lengthPrefixSize is the fixed width, in bytes, of the length header
// written ahead of every message.
const lengthPrefixSize = 4

const defaultReadLimit = 64 * 1024

type readState uint8

const (
	stateHeader readState = iota
	stateBody
)

// ReadWriter reads and writes length-prefixed messages over r and w.
type ReadWriter struct {
	r io.Reader
	w io.Writer

	readLimit int

	state    readState
	hdr      [lengthPrefixSize]byte
	hdrHave  int
	body     []byte
	bodyLen  int
	bodyHave int

	writeBuf []byte
}

// NewReadWriter returns a ReadWriter over r and w. readLimit caps the
// largest message Read will accept; zero or negative selects a 64KiB
// default.
func NewReadWriter(r io.Reader, w io.Writer, readLimit int) *ReadWriter {
	if readLimit <= 0 {
		readLimit = defaultReadLimit
	}
	return &ReadWriter{r: r, w: w, readLimit: readLimit}
}

// Read returns one complete message's bytes per call. A header or body
// left incomplete by an ErrWouldBlock from the underlying reader resumes
// on the next call rather than losing the bytes already read.
func (rw *ReadWriter) Read(dst []byte) (int, error) {
	if rw.state == stateHeader {
		for rw.hdrHave < lengthPrefixSize {
			n, err := rw.r.Read(rw.hdr[rw.hdrHave:])
			rw.hdrHave += n
			if err != nil {
				return 0, translate(err)
			}
			if n == 0 {
				return 0, ErrWouldBlock
			}
		}

		length := int(binary.BigEndian.Uint32(rw.hdr[:]))
		if length > rw.readLimit {
			return 0, ErrTooLong
		}
		if cap(rw.body) < length {
			rw.body = make([]byte, length)
		}
		rw.body = rw.body[:length]
		rw.bodyLen = length
		rw.bodyHave = 0
		rw.state = stateBody
	}

	for rw.bodyHave < rw.bodyLen {
		n, err := rw.r.Read(rw.body[rw.bodyHave:])
		rw.bodyHave += n
		if err != nil {
			return 0, translate(err)
		}
		if n == 0 {
			return 0, ErrWouldBlock
		}
	}

	if len(dst) < rw.bodyLen {
		return 0, ErrTooLong
	}
	n := copy(dst, rw.body[:rw.bodyLen])

	rw.hdrHave = 0
	rw.state = stateHeader
	return n, nil
}

// Write sends src as one length-prefixed message. The io.Writer contract
// guarantees a non-nil error on any short write, so one underlying Write
// call either sends the whole message or returns an error; after an
// error, part of the message may already have been written.
func (rw *ReadWriter) Write(src []byte) (int, error) {
	total := lengthPrefixSize + len(src)
	if cap(rw.writeBuf) < total {
		rw.writeBuf = make([]byte, total)
	}
	buf := rw.writeBuf[:total]
	binary.BigEndian.PutUint32(buf, uint32(len(src)))
	copy(buf[lengthPrefixSize:], src)

	if _, err := rw.w.Write(buf); err != nil {
		return 0, translate(err)
	}
	return len(src), nil
}

func translate(err error) error {
	if err == iox.ErrWouldBlock || err == iox.ErrMore {
		return ErrWouldBlock
	}
	return err
}
