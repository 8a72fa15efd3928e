// Copyright 2026 The xtransport Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xtransport

import "errors"

// Sentinel errors covering the error taxonomy of the wire protocol. Callers
// should compare with errors.Is; call sites that need to attach context
// (a sequence number, a packet id) wrap one of these with fmt.Errorf("%w: ...").
var (
	// ErrBufferTooSmall is returned by the codec or reassembler when the
	// destination buffer cannot hold the decoded result.
	ErrBufferTooSmall = errors.New("xtransport: buffer too small")

	// ErrBufferFull is returned by the reassembler, the retransmit manager,
	// RingBuffer.WriteAll and StreamReceiver when no slot or space is
	// available; transient, the caller may retry.
	ErrBufferFull = errors.New("xtransport: buffer full")

	// ErrChecksumMismatch is returned by the frame decoder when the CRC-32
	// trailer does not match the computed checksum.
	ErrChecksumMismatch = errors.New("xtransport: checksum mismatch")

	// ErrInvalidFrame is returned by the frame decoder on an unrecognized
	// frame type tag.
	ErrInvalidFrame = errors.New("xtransport: invalid frame")

	// ErrVersionMismatch is returned by the frame decoder when the version
	// byte does not equal the supported protocol Version.
	ErrVersionMismatch = errors.New("xtransport: version mismatch")

	// ErrSequenceOutOfRange is returned by the receive window when a
	// sequence number falls outside the current window span.
	ErrSequenceOutOfRange = errors.New("xtransport: sequence out of range")

	// ErrPayloadTooLarge is returned by EncodeFrame when a payload exceeds
	// the 16-bit length field, and by SendWindow.AddFrame when a serialized
	// frame exceeds MaxFrameSize.
	ErrPayloadTooLarge = errors.New("xtransport: payload too large")

	// ErrPacketTooLarge is returned by the sender when an application
	// message exceeds the maximum packet size.
	ErrPacketTooLarge = errors.New("xtransport: packet too large")

	// ErrWindowFull is returned by the sender when the send window has no
	// free slot; transient, the caller may retry.
	ErrWindowFull = errors.New("xtransport: send window full")

	// ErrChannelClosed is returned when an operation is attempted on a
	// sender or receiver channel that has already closed.
	ErrChannelClosed = errors.New("xtransport: channel closed")

	// ErrInvalidState is returned when an engine operation is attempted in
	// a ConnectionState that does not permit it.
	ErrInvalidState = errors.New("xtransport: invalid connection state")

	// ErrWouldBlock signals that no data is currently available, or the
	// carrier cannot currently accept more bytes; not an error at the
	// protocol layer.
	ErrWouldBlock = errors.New("xtransport: would block")

	// ErrIncompleteFragment is an internal-only error returned by
	// Reassembler.TakeCompleted when called on a packet id that has not
	// received all of its fragments.
	ErrIncompleteFragment = errors.New("xtransport: incomplete fragment")

	// ErrIOError reports a carrier write that accepted zero bytes without
	// an error (see WriteAll). Only Engine.Connect and Engine.Accept move
	// the connection to StateClosed when a write fails; the other Engine
	// methods return the error and leave the connection state unchanged.
	ErrIOError = errors.New("xtransport: i/o error")
)
