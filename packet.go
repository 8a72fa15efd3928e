// Copyright 2026 The xtransport Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xtransport

// Packet is an application-level message. The sender fragments Data into
// one or more frames; the receiver's Reassembler stitches fragments with
// the same PacketID back into the original bytes.
type Packet struct {
	ID        uint16
	Data      []byte
	Timestamp int64 // caller-supplied monotonic ms, 0 if unused
}

// NewPacket validates data's length against MaxPacketSize and returns a
// Packet with the given id.
func NewPacket(id uint16, data []byte) (Packet, error) {
	if len(data) > MaxPacketSize {
		return Packet{}, ErrPacketTooLarge
	}
	return Packet{ID: id, Data: data}, nil
}

// FragmentCount returns the number of frames required to carry p.Data
// given maxPayload bytes per frame. An empty packet still needs one
// (empty) fragment.
func (p Packet) FragmentCount(maxPayload int) int {
	if len(p.Data) == 0 {
		return 1
	}
	n := len(p.Data) / maxPayload
	if len(p.Data)%maxPayload != 0 {
		n++
	}
	return n
}

// FragmentData returns the slice of p.Data carried by fragment index,
// given maxPayload bytes per frame, and true if index is in range.
func (p Packet) FragmentData(index, maxPayload int) ([]byte, bool) {
	total := p.FragmentCount(maxPayload)
	if index < 0 || index >= total {
		return nil, false
	}
	start := index * maxPayload
	end := start + maxPayload
	if end > len(p.Data) {
		end = len(p.Data)
	}
	return p.Data[start:end], true
}

// Validate reports whether p.Data's length is within MaxPacketSize.
func (p Packet) Validate() error {
	if len(p.Data) > MaxPacketSize {
		return ErrPacketTooLarge
	}
	return nil
}
