// Copyright 2026 The xtransport Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xtransport

// ChannelState describes one direction of a connection's data path,
// distinct from the connection-level ConnectionState.
type ChannelState int

const (
	ChannelOpen ChannelState = iota
	ChannelClosing
	ChannelClosed
)

func (s ChannelState) String() string {
	switch s {
	case ChannelOpen:
		return "open"
	case ChannelClosing:
		return "closing"
	case ChannelClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Sender handles packet fragmentation, frame transmission, and
// retransmission tracking for one direction of a connection.
type Sender struct {
	window       *SendWindow
	retransmit   *RetransmitManager
	nextPacketID uint16
	ackNum       uint32
	maxPayload   int
	state        ChannelState
	frameBuf     []byte
}

// NewSender returns a Sender configured from cfg.
func NewSender(cfg *Config) *Sender {
	timer := NewRetransmitTimer(cfg.RetransmitTimeoutMs, cfg.RetransmitTimeoutMs*30, 2)
	return &Sender{
		window:     NewSendWindow(cfg.WindowSize, cfg.WindowSize, 0),
		retransmit: NewRetransmitManager(cfg.WindowSize, cfg.MaxRetransmit, timer),
		maxPayload: cfg.MaxPayloadSize(),
		state:      ChannelOpen,
		frameBuf:   make([]byte, cfg.MaxFrameSize),
	}
}

// State returns the sender's channel state.
func (s *Sender) State() ChannelState { return s.state }

// InFlight returns the number of frames awaiting acknowledgement.
func (s *Sender) InFlight() int { return s.window.InFlight() }

// CanSend reports whether the sender can accept more data right now.
func (s *Sender) CanSend() bool { return s.state == ChannelOpen && !s.window.IsFull() }

// SetAck sets the acknowledgement number piggybacked on outgoing frames.
func (s *Sender) SetAck(ack uint32) { s.ackNum = ack }

// SendPacket fragments data as needed and writes each fragment to carrier,
// tracking every frame for retransmission. It returns the number of
// frames sent.
func (s *Sender) SendPacket(carrier Carrier, data []byte, now int64) (int, error) {
	if s.state != ChannelOpen {
		return 0, ErrChannelClosed
	}

	packet, err := NewPacket(s.nextPacketID, data)
	if err != nil {
		return 0, err
	}
	fragmentCount := packet.FragmentCount(s.maxPayload)

	if s.window.Available() < fragmentCount {
		return 0, ErrWindowFull
	}

	for i := 0; i < fragmentCount; i++ {
		fragmentData, ok := packet.FragmentData(i, s.maxPayload)
		if !ok {
			return 0, ErrInvalidFrame
		}

		frame := NewDataFrame(s.window.NextSequence(), s.ackNum, s.nextPacketID, uint8(i), uint8(fragmentCount), fragmentData)

		size, err := EncodeFrame(frame, s.frameBuf)
		if err != nil {
			return 0, err
		}
		if err := WriteAll(carrier, s.frameBuf[:size]); err != nil {
			return 0, err
		}

		if _, err := s.window.AddFrame(s.frameBuf[:size], now); err != nil {
			return 0, err
		}
		if err := s.retransmit.Register(frame.Sequence, now); err != nil {
			return 0, err
		}
	}

	s.nextPacketID++
	return fragmentCount, nil
}

// SendAck writes a standalone ACK frame.
func (s *Sender) SendAck(carrier Carrier, ack uint32) error {
	frame := NewAckFrame(ack)
	size, err := EncodeFrame(frame, s.frameBuf)
	if err != nil {
		return err
	}
	return WriteAll(carrier, s.frameBuf[:size])
}

// SendNack writes a NACK frame requesting retransmission of sequence.
func (s *Sender) SendNack(carrier Carrier, sequence uint32) error {
	frame := NewNackFrame(sequence)
	size, err := EncodeFrame(frame, s.frameBuf)
	if err != nil {
		return err
	}
	return WriteAll(carrier, s.frameBuf[:size])
}

// SendPing writes a PING frame and registers it for RTT measurement,
// returning its sequence.
func (s *Sender) SendPing(carrier Carrier, now int64) (uint32, error) {
	seq := s.window.NextSequence()
	frame := NewPingFrame(seq)
	size, err := EncodeFrame(frame, s.frameBuf)
	if err != nil {
		return 0, err
	}
	if err := WriteAll(carrier, s.frameBuf[:size]); err != nil {
		return 0, err
	}
	if err := s.retransmit.Register(seq, now); err != nil {
		return 0, err
	}
	return seq, nil
}

// SendPong writes a PONG frame in response to a PING.
func (s *Sender) SendPong(carrier Carrier, sequence uint32) error {
	frame := NewPongFrame(sequence)
	size, err := EncodeFrame(frame, s.frameBuf)
	if err != nil {
		return err
	}
	return WriteAll(carrier, s.frameBuf[:size])
}

// ProcessAck applies a cumulative ACK to both the send window and the
// retransmit manager.
func (s *Sender) ProcessAck(ack uint32, now int64) {
	s.window.AckCumulative(ack)
	s.retransmit.AcknowledgeCumulative(ack, now)
}

// ProcessSelectiveAck applies a selective ACK for a single sequence.
func (s *Sender) ProcessSelectiveAck(sequence uint32, now int64) {
	s.window.AckSelective(sequence)
	s.retransmit.Acknowledge(sequence, now)
}

// CheckRetransmit resends any frame whose retransmit timer has fired and
// has not exhausted its attempt budget. It returns the number of frames
// retransmitted.
func (s *Sender) CheckRetransmit(carrier Carrier, now int64) (int, error) {
	var toRetransmit []uint32

	s.retransmit.CheckTimeouts(now, func(seq uint32, exceeded bool) {
		if exceeded {
			return
		}
		toRetransmit = append(toRetransmit, seq)
	})

	retransmitCount := 0
	for _, seq := range toRetransmit {
		entry, ok := s.window.GetEntry(seq)
		if !ok {
			continue
		}
		if err := WriteAll(carrier, entry.Data); err == nil {
			retransmitCount++
		}
		_ = s.retransmit.MarkRetransmitted(seq, now)
		_ = s.window.MarkRetransmitted(seq, now)
	}

	return retransmitCount, nil
}

// Close initiates a graceful close by sending a FIN frame.
func (s *Sender) Close(carrier Carrier) error {
	if s.state != ChannelOpen {
		return nil
	}
	frame := NewFinFrame(s.window.NextSequence())
	size, err := EncodeFrame(frame, s.frameBuf)
	if err != nil {
		return err
	}
	if err := WriteAll(carrier, s.frameBuf[:size]); err != nil {
		return err
	}
	s.state = ChannelClosing
	return nil
}

// Stats returns the sender's retransmission statistics.
func (s *Sender) Stats() RetransmitStats { return s.retransmit.Stats() }

// Reset returns the sender to its initial state.
func (s *Sender) Reset() {
	s.window.Reset(0)
	s.retransmit.Reset()
	s.nextPacketID = 0
	s.ackNum = 0
	s.state = ChannelOpen
}
