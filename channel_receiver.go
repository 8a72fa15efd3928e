// Copyright 2026 The xtransport Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xtransport

// Receiver handles frame reception, packet reassembly, and acknowledgement
// bookkeeping for one direction of a connection.
type Receiver struct {
	window          *ReceiveWindow
	reassembler     *Reassembler
	state           ChannelState
	recvBuf         []byte
	recvLen         int
	packetReady     bool
	currentPacketID uint16
	verifyChecksum  bool
}

// NewReceiver returns a Receiver configured from cfg.
func NewReceiver(cfg *Config) *Receiver {
	return &Receiver{
		window:         NewReceiveWindow(cfg.WindowSize, cfg.WindowSize, 0),
		reassembler:    NewReassembler(cfg.MaxPendingFragments, cfg.MaxPayloadSize(), MaxPacketSize, cfg.FragmentTimeoutMs),
		state:          ChannelOpen,
		recvBuf:        make([]byte, MaxPacketSize),
		verifyChecksum: cfg.EnableChecksum,
	}
}

// State returns the receiver's channel state.
func (r *Receiver) State() ChannelState { return r.state }

// ExpectedSequence returns the next sequence the receiver expects, for
// inclusion in an outgoing ACK.
func (r *Receiver) ExpectedSequence() uint32 { return r.window.ExpectedSequence() }

// HasData reports whether a complete packet is ready to read.
func (r *Receiver) HasData() bool { return r.packetReady }

// ProcessFrame applies one received frame. It returns true if a complete
// packet became ready as a result.
func (r *Receiver) ProcessFrame(f Frame, now int64) (bool, error) {
	switch f.Type {
	case FrameData:
		return r.processDataFrame(f, now)
	case FrameFin:
		r.state = ChannelClosing
		return false, nil
	case FrameReset:
		r.state = ChannelClosed
		return false, nil
	default:
		return false, nil
	}
}

func (r *Receiver) processDataFrame(f Frame, now int64) (bool, error) {
	result, err := r.window.Receive(f.Sequence)
	if err != nil {
		return false, err
	}
	if result != ReceiveNew {
		return false, nil
	}

	packetID, complete, err := r.reassembler.ProcessFrame(f, now)
	if err != nil {
		return false, err
	}
	if !complete {
		return false, nil
	}

	if f.TotalFragments <= 1 {
		if len(f.Payload) > len(r.recvBuf) {
			return false, ErrBufferTooSmall
		}
		r.recvLen = copy(r.recvBuf, f.Payload)
	} else {
		n, err := r.reassembler.TakeCompleted(packetID, r.recvBuf)
		if err != nil {
			return false, err
		}
		r.recvLen = n
	}

	r.packetReady = true
	r.currentPacketID = packetID
	r.window.Advance()

	return true, nil
}

// Read copies the ready packet's bytes into buf, clearing the ready flag.
// It fails with ErrWouldBlock if no packet is ready.
func (r *Receiver) Read(buf []byte) (int, error) {
	if !r.packetReady {
		return 0, ErrWouldBlock
	}
	if len(buf) < r.recvLen {
		return 0, ErrBufferTooSmall
	}

	n := copy(buf, r.recvBuf[:r.recvLen])
	r.packetReady = false
	r.recvLen = 0
	return n, nil
}

// MissingSequences returns in-window sequences not yet received, for NACK
// generation.
func (r *Receiver) MissingSequences() []uint32 { return r.window.MissingSequences() }

// Cleanup evicts timed-out reassembly entries.
func (r *Receiver) Cleanup(now int64) int { return r.reassembler.Cleanup(now) }

// Reset returns the receiver to its initial state.
func (r *Receiver) Reset() {
	r.window.Reset(0)
	r.state = ChannelOpen
	r.recvLen = 0
	r.packetReady = false
}
