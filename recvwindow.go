// Copyright 2026 The xtransport Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xtransport

// ReceiveWindow tracks which sequence numbers have arrived within a
// sliding span starting at ExpectedSequence, detecting duplicates and
// gaps without assuming in-order delivery.
type ReceiveWindow struct {
	received        []bool
	expectedSeq     uint32
	highestReceived uint32
	windowSize      int
}

// NewReceiveWindow returns a ReceiveWindow with the given capacity (bitmap
// slot count) and logical window size, expecting initialSeq next.
func NewReceiveWindow(capacity, windowSize int, initialSeq uint32) *ReceiveWindow {
	if windowSize > capacity {
		windowSize = capacity
	}
	return &ReceiveWindow{
		received:        make([]bool, capacity),
		expectedSeq:     initialSeq,
		highestReceived: initialSeq - 1,
		windowSize:      windowSize,
	}
}

func (r *ReceiveWindow) ExpectedSequence() uint32 { return r.expectedSeq }
func (r *ReceiveWindow) HighestReceived() uint32  { return r.highestReceived }

// IsInWindow reports whether seq falls within the current window span.
func (r *ReceiveWindow) IsInWindow(seq uint32) bool {
	diff := seqDiff(seq, r.expectedSeq)
	return diff < uint32(r.windowSize)
}

// ReceiveResult classifies the outcome of ReceiveWindow.Receive.
type ReceiveResult int

const (
	ReceiveNew ReceiveResult = iota
	ReceiveDuplicate
	ReceiveOldDuplicate
)

// Receive marks seq as received. It returns ReceiveNew the first time a
// given in-window sequence arrives, ReceiveDuplicate if its bit is already
// set, ReceiveOldDuplicate if seq is behind ExpectedSequence by less than
// one window span, or ErrSequenceOutOfRange otherwise.
func (r *ReceiveWindow) Receive(seq uint32) (ReceiveResult, error) {
	if !r.IsInWindow(seq) {
		diff := seqDiff(r.expectedSeq, seq)
		if diff > 0 && diff < uint32(r.windowSize) {
			return ReceiveOldDuplicate, nil
		}
		return 0, ErrSequenceOutOfRange
	}

	index := int(seq) % len(r.received)
	if r.received[index] {
		return ReceiveDuplicate, nil
	}
	r.received[index] = true

	diff := seqDiff(seq, r.highestReceived)
	if diff > 0 && !seqIsPast(diff) {
		r.highestReceived = seq
	}

	return ReceiveNew, nil
}

// Advance pops contiguous received bits starting at ExpectedSequence,
// clearing them, and returns the new ExpectedSequence — the cumulative
// ACK target.
func (r *ReceiveWindow) Advance() uint32 {
	for r.received[int(r.expectedSeq)%len(r.received)] {
		r.received[int(r.expectedSeq)%len(r.received)] = false
		r.expectedSeq++
	}
	return r.expectedSeq
}

// MissingSequences returns the in-window sequences <= HighestReceived that
// have not been received, for optional NACK emission.
func (r *ReceiveWindow) MissingSequences() []uint32 {
	var out []uint32
	base := r.expectedSeq
	highest := r.highestReceived
	for offset := uint32(0); offset < uint32(r.windowSize); offset++ {
		seq := base + offset
		diff := seqDiff(seq, highest)
		if seqIsPast(diff) { // seq < highest
			if !r.received[int(seq)%len(r.received)] {
				out = append(out, seq)
			}
		}
	}
	return out
}

// Reset clears all received bits and restarts at initialSeq.
func (r *ReceiveWindow) Reset(initialSeq uint32) {
	for i := range r.received {
		r.received[i] = false
	}
	r.expectedSeq = initialSeq
	r.highestReceived = initialSeq - 1
}
