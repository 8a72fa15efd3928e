// Copyright 2026 The xtransport Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xtransport

import (
	"encoding/binary"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

// ConnectionState describes the lifecycle of one Engine, independent of
// either channel's ChannelState.
type ConnectionState int

const (
	StateIdle ConnectionState = iota
	StateConnecting
	StateAccepting
	StateConnected
	StateClosing
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateAccepting:
		return "accepting"
	case StateConnected:
		return "connected"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Engine owns one connection's sender and receiver channels and drives
// the protocol state machine over a Carrier. It is single-owner,
// non-reentrant, and performs all I/O inline within its method calls.
type Engine struct {
	ID     xid.ID
	cfg    *Config
	sender *Sender
	recv   *Receiver
	state  ConnectionState
	log    *logrus.Entry

	peerInitialSeq     uint32
	lastAckSentAt      int64
	pendingAckDeadline int64
	ackOwed            bool
}

// NewEngine returns an Engine in StateIdle, tagged with a fresh xid for
// log and metric correlation.
func NewEngine(cfg *Config) *Engine {
	id := xid.New()
	return &Engine{
		ID:     id,
		cfg:    cfg,
		sender: NewSender(cfg),
		recv:   NewReceiver(cfg),
		state:  StateIdle,
		log:    logrus.WithField("conn", id.String()),
	}
}

// State returns the current connection state.
func (e *Engine) State() ConnectionState { return e.state }

// Stats returns the sender's retransmission statistics.
func (e *Engine) Stats() RetransmitStats { return e.sender.Stats() }

// Connect emits a SYNC frame and transitions to StateConnecting.
func (e *Engine) Connect(carrier Carrier, now int64) error {
	seq := NewSyncFrame(e.sender.window.NextSequence())
	buf := make([]byte, seq.WireSize())
	size, err := EncodeFrame(seq, buf)
	if err != nil {
		return err
	}
	if err := WriteAll(carrier, buf[:size]); err != nil {
		e.state = StateClosed
		return err
	}
	if err := e.sender.retransmit.Register(seq.Sequence, now); err != nil {
		e.log.WithError(err).Warn("register SYNC for retransmit")
	}
	e.state = StateConnecting
	e.log.Debug("connect: SYNC sent")
	return nil
}

// Accept emits a SYNC_ACK frame and transitions to StateConnected.
func (e *Engine) Accept(carrier Carrier, now int64) error {
	frame := NewSyncAckFrame(e.sender.window.NextSequence(), e.recv.ExpectedSequence())
	buf := make([]byte, frame.WireSize())
	size, err := EncodeFrame(frame, buf)
	if err != nil {
		return err
	}
	if err := WriteAll(carrier, buf[:size]); err != nil {
		e.state = StateClosed
		return err
	}
	e.state = StateConnected
	e.log.Debug("accept: SYNC_ACK sent")
	return nil
}

// Send fragments and transmits data. It requires StateConnected.
func (e *Engine) Send(carrier Carrier, data []byte, now int64) (int, error) {
	if e.state != StateConnected {
		return 0, ErrInvalidState
	}
	e.sender.SetAck(e.recv.ExpectedSequence())
	n, err := e.sender.SendPacket(carrier, data, now)
	if err == nil {
		e.ackOwed = false
	}
	return n, err
}

// Recv drains the carrier via ProcessIncoming, then reads any staged
// packet into dst. It returns ErrWouldBlock if nothing is ready yet.
func (e *Engine) Recv(carrier Carrier, dst []byte, now int64) (int, error) {
	if err := e.ProcessIncoming(carrier, now); err != nil {
		return 0, err
	}
	return e.recv.Read(dst)
}

// ProcessIncoming reads and dispatches frames from carrier until it
// would-block or the carrier reports closed (zero read). A frame that
// fails its checksum, type or version check is logged and skipped without
// terminating the loop; no count of such frames is kept.
func (e *Engine) ProcessIncoming(carrier Carrier, now int64) error {
	buf := make([]byte, MaxFrameSize)

	for {
		hn, err := carrier.Read(buf[:FrameHeaderSize])
		if err == ErrWouldBlock {
			return nil
		}
		if err != nil {
			e.state = StateClosed
			return err
		}
		if hn == 0 {
			e.state = StateClosed
			return nil
		}
		if hn < FrameHeaderSize {
			// Partial header from a non-reassembling carrier; this
			// engine expects frame-aligned reads (StreamCarrier provides
			// them over a raw byte stream).
			return nil
		}

		payloadLen := int(binary.BigEndian.Uint16(buf[16:18]))
		total := FrameHeaderSize + payloadLen
		if total > len(buf) {
			e.log.Warn("discarding frame: payload exceeds MaxFrameSize")
			continue
		}
		if payloadLen > 0 {
			pn, perr := carrier.Read(buf[FrameHeaderSize:total])
			if perr != nil || pn < payloadLen {
				return nil
			}
		}

		var frame Frame
		if e.cfg.EnableChecksum {
			frame, _, err = DecodeFrame(buf[:total])
		} else {
			frame, _, err = DecodeFrameTrusted(buf[:total])
		}
		if err == ErrChecksumMismatch || err == ErrInvalidFrame || err == ErrVersionMismatch {
			e.log.WithError(err).Warn("discarding malformed frame")
			continue
		}
		if err != nil {
			return err
		}

		if err := e.dispatch(carrier, frame, now); err != nil {
			return err
		}
	}
}

func (e *Engine) dispatch(carrier Carrier, frame Frame, now int64) error {
	switch frame.Type {
	case FrameSync:
		e.peerInitialSeq = frame.Sequence
		e.state = StateAccepting
		return e.Accept(carrier, now)
	case FrameSyncAck:
		e.state = StateConnected
		return e.sender.SendAck(carrier, e.recv.ExpectedSequence())
	case FrameAck:
		e.sender.ProcessAck(frame.Ack, now)
		return nil
	case FrameNack:
		entry, ok := e.sender.window.GetEntry(frame.Sequence)
		if !ok {
			return nil
		}
		return WriteAll(carrier, entry.Data)
	case FramePing:
		return e.sender.SendPong(carrier, frame.Sequence)
	case FramePong:
		e.sender.ProcessSelectiveAck(frame.Sequence, now)
		return nil
	case FrameFinAck:
		e.state = StateClosed
		return nil
	default:
		ready, err := e.recv.ProcessFrame(frame, now)
		if err != nil {
			return err
		}
		if e.recv.State() == ChannelClosed {
			e.state = StateClosed
			return nil
		}
		if ready {
			e.maybeAck(carrier, now)
		} else {
			e.ackOwed = true
			e.pendingAckDeadline = now + e.cfg.DelayedAckMs
		}
		return nil
	}
}

// maybeAck sends an immediate ACK piggybacking the current expected
// sequence.
func (e *Engine) maybeAck(carrier Carrier, now int64) {
	ack := e.recv.ExpectedSequence()
	if err := e.sender.SendAck(carrier, ack); err != nil {
		e.log.WithError(err).Warn("send ack")
		return
	}
	e.lastAckSentAt = now
	e.ackOwed = false
}

// Poll drives progress without application data: processes incoming
// frames, flushes overdue delayed ACKs, retries overdue retransmits, and
// evicts stalled reassembly entries.
func (e *Engine) Poll(carrier Carrier, now int64) error {
	if err := e.ProcessIncoming(carrier, now); err != nil {
		return err
	}
	if e.ackOwed && (e.cfg.DelayedAckMs == 0 || now >= e.pendingAckDeadline) {
		e.maybeAck(carrier, now)
	}
	if e.state == StateConnected {
		if _, err := e.sender.CheckRetransmit(carrier, now); err != nil {
			return err
		}
	}
	e.recv.Cleanup(now)
	return nil
}

// Close emits a FIN frame and transitions to StateClosing.
func (e *Engine) Close(carrier Carrier) error {
	if err := e.sender.Close(carrier); err != nil {
		return err
	}
	e.state = StateClosing
	return nil
}

// Ping emits a PING frame for RTT sampling.
func (e *Engine) Ping(carrier Carrier, now int64) (uint32, error) {
	return e.sender.SendPing(carrier, now)
}

// Reset emits a RESET frame and immediately transitions to StateClosed,
// from any prior state.
func (e *Engine) Reset(carrier Carrier) error {
	frame := NewResetFrame(e.sender.window.NextSequence())
	buf := make([]byte, frame.WireSize())
	size, err := EncodeFrame(frame, buf)
	if err != nil {
		return err
	}
	_ = WriteAll(carrier, buf[:size])
	e.state = StateClosed
	return nil
}
