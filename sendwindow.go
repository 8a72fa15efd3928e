// Copyright 2026 The xtransport Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xtransport

// seqDiff returns a - b as a signed distance over the 32-bit wrap-around
// sequence space: a result with the high bit set means a is "before" b.
func seqDiff(a, b uint32) uint32 { return a - b }

func seqIsPast(diff uint32) bool { return diff > 0x7FFFFFFF }

// WindowEntry tracks one in-flight frame in the SendWindow.
type WindowEntry struct {
	Data          []byte // serialized frame bytes, kept for retransmit
	Sequence      uint32
	SentTime      int64
	TransmitCount uint8
	InUse         bool
	Acked         bool
}

// SendWindow tracks frames sent but not yet cumulatively acknowledged,
// indexed by sequence modulo capacity.
type SendWindow struct {
	entries    []WindowEntry
	baseSeq    uint32
	nextSeq    uint32
	inFlight   int
	windowSize int
}

// NewSendWindow returns a SendWindow with the given capacity (slot count)
// and logical window size (must be <= capacity), starting at initialSeq.
func NewSendWindow(capacity, windowSize int, initialSeq uint32) *SendWindow {
	if windowSize > capacity {
		windowSize = capacity
	}
	return &SendWindow{
		entries:    make([]WindowEntry, capacity),
		baseSeq:    initialSeq,
		nextSeq:    initialSeq,
		windowSize: windowSize,
	}
}

func (w *SendWindow) NextSequence() uint32 { return w.nextSeq }
func (w *SendWindow) BaseSequence() uint32  { return w.baseSeq }
func (w *SendWindow) InFlight() int         { return w.inFlight }
func (w *SendWindow) IsFull() bool          { return w.inFlight >= w.windowSize }
func (w *SendWindow) IsEmpty() bool         { return w.inFlight == 0 }

// Available returns the number of free slots in the logical window.
func (w *SendWindow) Available() int {
	if w.windowSize <= w.inFlight {
		return 0
	}
	return w.windowSize - w.inFlight
}

// AddFrame stores the already-serialized frameData at the next sequence
// slot and returns the assigned sequence number.
func (w *SendWindow) AddFrame(frameData []byte, sentTime int64) (uint32, error) {
	if w.IsFull() {
		return 0, ErrWindowFull
	}
	if len(frameData) > MaxFrameSize {
		return 0, ErrPayloadTooLarge
	}

	seq := w.nextSeq
	index := int(seq) % len(w.entries)
	e := &w.entries[index]
	e.Data = append(e.Data[:0], frameData...)
	e.Sequence = seq
	e.SentTime = sentTime
	e.TransmitCount = 1
	e.InUse = true
	e.Acked = false

	w.nextSeq++
	w.inFlight++
	return seq, nil
}

// AckCumulative retires every in-use, unacked entry whose sequence
// distance from base is <= the distance of ackSeq from base, advancing
// BaseSequence past them. It returns the number of entries newly retired.
func (w *SendWindow) AckCumulative(ackSeq uint32) int {
	acked := 0
	for w.baseSeq != w.nextSeq {
		diff := seqDiff(ackSeq, w.baseSeq)
		if seqIsPast(diff) {
			break
		}

		index := int(w.baseSeq) % len(w.entries)
		e := &w.entries[index]
		if e.InUse && !e.Acked {
			e.Acked = true
			e.InUse = false
			if w.inFlight > 0 {
				w.inFlight--
			}
			acked++
		}

		w.baseSeq++
	}
	return acked
}

// AckSelective marks one in-window entry acked without advancing
// BaseSequence, used for PONG-matched PINGs. It reports whether an entry
// was found and newly acked.
func (w *SendWindow) AckSelective(seq uint32) bool {
	diff := seqDiff(seq, w.baseSeq)
	if seqIsPast(diff) || int(diff) >= w.windowSize {
		return false
	}

	index := int(seq) % len(w.entries)
	e := &w.entries[index]
	if e.InUse && e.Sequence == seq && !e.Acked {
		e.Acked = true
		return true
	}
	return false
}

// GetEntry returns the window entry for seq if it is in-window and in use.
func (w *SendWindow) GetEntry(seq uint32) (*WindowEntry, bool) {
	diff := seqDiff(seq, w.baseSeq)
	if seqIsPast(diff) || int(diff) >= w.windowSize {
		return nil, false
	}
	index := int(seq) % len(w.entries)
	e := &w.entries[index]
	if e.InUse && e.Sequence == seq {
		return e, true
	}
	return nil, false
}

// MarkRetransmitted bumps an entry's transmit count and sent-time.
func (w *SendWindow) MarkRetransmitted(seq uint32, sentTime int64) error {
	diff := seqDiff(seq, w.baseSeq)
	if seqIsPast(diff) || int(diff) >= w.windowSize {
		return ErrSequenceOutOfRange
	}
	index := int(seq) % len(w.entries)
	e := &w.entries[index]
	if e.InUse && e.Sequence == seq {
		e.TransmitCount++
		e.SentTime = sentTime
		return nil
	}
	return ErrSequenceOutOfRange
}

// Reset clears all entries and restarts sequencing at initialSeq.
func (w *SendWindow) Reset(initialSeq uint32) {
	for i := range w.entries {
		w.entries[i] = WindowEntry{}
	}
	w.baseSeq = initialSeq
	w.nextSeq = initialSeq
	w.inFlight = 0
}

// RetransmitCandidate is one entry yielded by FindRetransmit.
type RetransmitCandidate struct {
	Sequence uint32
	Exceeded bool // transmit count has reached max_retransmit
}

// FindRetransmit scans in-use, unacked entries between base and next
// sequence and returns those whose age is >= timeout, each tagged with
// whether its transmit count has already reached maxRetransmit.
func (w *SendWindow) FindRetransmit(now int64, timeout int64, maxRetransmit uint8) []RetransmitCandidate {
	var out []RetransmitCandidate
	for seq := w.baseSeq; seq != w.nextSeq; seq++ {
		index := int(seq) % len(w.entries)
		e := &w.entries[index]
		if e.InUse && !e.Acked && e.Sequence == seq {
			age := now - e.SentTime
			if age < 0 {
				age = 0
			}
			if age >= timeout {
				out = append(out, RetransmitCandidate{
					Sequence: seq,
					Exceeded: e.TransmitCount >= maxRetransmit,
				})
			}
		}
	}
	return out
}
