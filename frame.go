// Copyright 2026 The xtransport Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xtransport

import (
	"encoding/binary"
	"fmt"

	"github.com/kylinx/xtransport/internal/crc32x"
)

// Version is the only protocol version this package speaks. A decoder
// encountering any other version byte rejects the frame with
// ErrVersionMismatch before attempting to read a payload.
const Version uint8 = 0x01

// FrameHeaderSize is the fixed size, in bytes, of a frame header.
const FrameHeaderSize = 24

// MaxFrameSize is the default upper bound on header+payload size; it is
// also the default Config.MaxFrameSize.
const MaxFrameSize = 1048

// MaxPacketSize is the largest application message this package will
// fragment; it is also the size of each reassembly buffer and of the
// receiver's staging buffer.
const MaxPacketSize = 65535

// FrameType identifies the purpose of a frame.
type FrameType uint8

const (
	FrameData         FrameType = 0x01
	FrameAck          FrameType = 0x02
	FrameNack         FrameType = 0x03
	FramePing         FrameType = 0x04
	FramePong         FrameType = 0x05
	FrameReset        FrameType = 0x06
	FrameWindowUpdate FrameType = 0x07
	FrameSync         FrameType = 0x08
	FrameSyncAck      FrameType = 0x09
	FrameFin          FrameType = 0x0A
	FrameFinAck       FrameType = 0x0B
)

func frameTypeValid(t FrameType) bool {
	return t >= FrameData && t <= FrameFinAck
}

// HasPayload reports whether frames of this type carry payload bytes.
func (t FrameType) HasPayload() bool { return t == FrameData }

// RequiresAck reports whether frames of this type expect acknowledgement.
func (t FrameType) RequiresAck() bool {
	return t == FrameData || t == FrameSync || t == FrameFin
}

func (t FrameType) String() string {
	switch t {
	case FrameData:
		return "DATA"
	case FrameAck:
		return "ACK"
	case FrameNack:
		return "NACK"
	case FramePing:
		return "PING"
	case FramePong:
		return "PONG"
	case FrameReset:
		return "RESET"
	case FrameWindowUpdate:
		return "WINDOW_UPDATE"
	case FrameSync:
		return "SYNC"
	case FrameSyncAck:
		return "SYNC_ACK"
	case FrameFin:
		return "FIN"
	case FrameFinAck:
		return "FIN_ACK"
	default:
		return fmt.Sprintf("FrameType(%#x)", uint8(t))
	}
}

// FrameFlags is a bitmask of per-frame control flags.
type FrameFlags uint16

const (
	FlagFirstFragment FrameFlags = 1 << 0
	FlagLastFragment  FrameFlags = 1 << 1
	FlagUrgent        FrameFlags = 1 << 2
	FlagCompressed    FrameFlags = 1 << 3 // reserved, must round-trip
	FlagEncrypted     FrameFlags = 1 << 4 // reserved, must round-trip
)

// Has reports whether all bits of other are set in f.
func (f FrameFlags) Has(other FrameFlags) bool { return f&other == other }

// Frame is the on-wire atomic unit of the protocol: a 24-byte header
// optionally followed by payload. Only FrameData carries payload.
type Frame struct {
	Version        uint8
	Type           FrameType
	Flags          FrameFlags
	Sequence       uint32
	Ack            uint32
	PacketID       uint16
	FragmentIndex  uint8
	TotalFragments uint8
	Checksum       uint32
	Payload        []byte
}

// NewDataFrame builds a DATA frame for one fragment of a packet. FIRST/LAST
// fragment flags are derived from fragmentIndex and totalFragments: if
// totalFragments == 1, both flags are set.
func NewDataFrame(sequence, ack uint32, packetID uint16, fragmentIndex, totalFragments uint8, payload []byte) Frame {
	var flags FrameFlags
	if fragmentIndex == 0 {
		flags |= FlagFirstFragment
	}
	if fragmentIndex == totalFragments-1 {
		flags |= FlagLastFragment
	}
	return Frame{
		Version:        Version,
		Type:           FrameData,
		Flags:          flags,
		Sequence:       sequence,
		Ack:            ack,
		PacketID:       packetID,
		FragmentIndex:  fragmentIndex,
		TotalFragments: totalFragments,
		Payload:        payload,
	}
}

// NewAckFrame builds a cumulative ACK frame.
func NewAckFrame(ack uint32) Frame {
	return Frame{Version: Version, Type: FrameAck, Ack: ack}
}

// NewNackFrame builds a NACK requesting retransmission of sequence.
func NewNackFrame(sequence uint32) Frame {
	return Frame{Version: Version, Type: FrameNack, Sequence: sequence}
}

// NewPingFrame builds a PING frame carrying sequence for RTT sampling.
func NewPingFrame(sequence uint32) Frame {
	return Frame{Version: Version, Type: FramePing, Sequence: sequence}
}

// NewPongFrame builds a PONG reply echoing the PING's sequence.
func NewPongFrame(sequence uint32) Frame {
	return Frame{Version: Version, Type: FramePong, Sequence: sequence}
}

// NewSyncFrame builds a SYNC frame for connection setup.
func NewSyncFrame(sequence uint32) Frame {
	return Frame{Version: Version, Type: FrameSync, Sequence: sequence}
}

// NewSyncAckFrame builds a SYNC_ACK reply.
func NewSyncAckFrame(sequence, ack uint32) Frame {
	return Frame{Version: Version, Type: FrameSyncAck, Sequence: sequence, Ack: ack}
}

// NewFinFrame builds a FIN frame for graceful close.
func NewFinFrame(sequence uint32) Frame {
	return Frame{Version: Version, Type: FrameFin, Sequence: sequence}
}

// NewFinAckFrame builds a FIN_ACK reply.
func NewFinAckFrame(sequence, ack uint32) Frame {
	return Frame{Version: Version, Type: FrameFinAck, Sequence: sequence, Ack: ack}
}

// NewResetFrame builds a RESET frame.
func NewResetFrame(sequence uint32) Frame {
	return Frame{Version: Version, Type: FrameReset, Sequence: sequence}
}

// NewWindowUpdateFrame builds a WINDOW_UPDATE frame advertising windowSize
// in its sequence field.
func NewWindowUpdateFrame(windowSize uint32) Frame {
	return Frame{Version: Version, Type: FrameWindowUpdate, Sequence: windowSize}
}

// WireSize is the total serialized size of f.
func (f Frame) WireSize() int { return FrameHeaderSize + len(f.Payload) }

// EncodeFrame writes header fields in network byte order, copies the
// payload, and computes the CRC-32 over header bytes [0,20) concatenated
// with the payload, writing it at header offset 20. It returns the number
// of bytes written into buf.
func EncodeFrame(f Frame, buf []byte) (int, error) {
	total := f.WireSize()
	if len(buf) < total {
		return 0, ErrBufferTooSmall
	}
	if len(f.Payload) > 0xFFFF {
		return 0, ErrPayloadTooLarge
	}

	buf[0] = Version
	buf[1] = uint8(f.Type)
	binary.BigEndian.PutUint16(buf[2:4], uint16(f.Flags))
	binary.BigEndian.PutUint32(buf[4:8], f.Sequence)
	binary.BigEndian.PutUint32(buf[8:12], f.Ack)
	binary.BigEndian.PutUint16(buf[12:14], f.PacketID)
	buf[14] = f.FragmentIndex
	buf[15] = f.TotalFragments
	binary.BigEndian.PutUint16(buf[16:18], uint16(len(f.Payload)))
	buf[18] = 0
	buf[19] = 0

	if len(f.Payload) > 0 {
		copy(buf[FrameHeaderSize:total], f.Payload)
	}

	checksum := crc32x.ComputeSlices(buf[0:20], f.Payload)
	binary.BigEndian.PutUint32(buf[20:24], checksum)

	return total, nil
}

// DecodeFrame parses a frame from buf, verifying its checksum. On success
// it returns the parsed Frame (whose Payload aliases buf) and the number
// of bytes consumed.
func DecodeFrame(buf []byte) (Frame, int, error) {
	return decodeFrame(buf, true)
}

// DecodeFrameTrusted parses a frame from buf without verifying its
// checksum, for Config.EnableChecksum == false on transports that are
// already integrity-protected below this layer.
func DecodeFrameTrusted(buf []byte) (Frame, int, error) {
	return decodeFrame(buf, false)
}

func decodeFrame(buf []byte, verify bool) (Frame, int, error) {
	if len(buf) < FrameHeaderSize {
		return Frame{}, 0, ErrBufferTooSmall
	}

	version := buf[0]
	if version != Version {
		return Frame{}, 0, ErrVersionMismatch
	}

	ftype := FrameType(buf[1])
	if !frameTypeValid(ftype) {
		return Frame{}, 0, ErrInvalidFrame
	}

	flags := FrameFlags(binary.BigEndian.Uint16(buf[2:4]))
	sequence := binary.BigEndian.Uint32(buf[4:8])
	ack := binary.BigEndian.Uint32(buf[8:12])
	packetID := binary.BigEndian.Uint16(buf[12:14])
	fragmentIndex := buf[14]
	totalFragments := buf[15]
	payloadLen := int(binary.BigEndian.Uint16(buf[16:18]))
	storedChecksum := binary.BigEndian.Uint32(buf[20:24])

	total := FrameHeaderSize + payloadLen
	if len(buf) < total {
		return Frame{}, 0, ErrBufferTooSmall
	}

	payload := buf[FrameHeaderSize:total]
	if verify {
		computed := crc32x.ComputeSlices(buf[0:20], payload)
		if storedChecksum != computed {
			return Frame{}, 0, ErrChecksumMismatch
		}
	}

	return Frame{
		Version:        version,
		Type:           ftype,
		Flags:          flags,
		Sequence:       sequence,
		Ack:            ack,
		PacketID:       packetID,
		FragmentIndex:  fragmentIndex,
		TotalFragments: totalFragments,
		Checksum:       storedChecksum,
		Payload:        payload,
	}, total, nil
}
