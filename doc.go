// Copyright 2026 The xtransport Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xtransport implements a reliable message-oriented transport
// protocol layered over any ordered byte-stream carrier: a Unix domain
// socket, TCP connection, vsock, shared-memory ring, or loopback pipe.
//
// The protocol fragments arbitrarily large application messages into
// self-describing, checksummed wire frames, transmits them over a
// caller-supplied Carrier, and reassembles them at the peer. Delivery is
// made reliable with a sliding send window, per-frame retransmission
// timers with exponential backoff, and cumulative/selective
// acknowledgement. A Engine owns the full connection lifecycle: handshake,
// established data transfer, graceful close, and reset.
//
// xtransport does not implement congestion control beyond RTT-tracked
// backoff, encryption or authentication, receiver-advertised flow control
// beyond a fixed window, kernel zero-copy, or multiplexing of logical
// streams over one Carrier. Those are explicitly out of scope.
//
// The package is single-owner and non-reentrant per connection: there is
// no background goroutine, and the caller drives all progress by calling
// Send, Recv, Poll, or Close. All timing is driven by a caller-supplied
// monotonic "now" in milliseconds, so the engine never reads the system
// clock itself.
package xtransport
