// Copyright 2026 The xtransport Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xtransport

// RetransmitStats accumulates counters describing one connection's
// retransmission behavior, suitable for exposing as metrics (see stats.go).
type RetransmitStats struct {
	FramesSent           uint64
	Retransmissions      uint64
	FailedFrames         uint64
	SuccessfulDeliveries uint64
}

// RetransmitRate returns the retransmission rate as a percentage of
// frames sent.
func (s RetransmitStats) RetransmitRate() float32 {
	if s.FramesSent == 0 {
		return 0
	}
	return float32(s.Retransmissions) / float32(s.FramesSent) * 100
}

// SuccessRate returns the percentage of concluded frames (delivered or
// failed) that were successfully delivered.
func (s RetransmitStats) SuccessRate() float32 {
	total := s.SuccessfulDeliveries + s.FailedFrames
	if total == 0 {
		return 100
	}
	return float32(s.SuccessfulDeliveries) / float32(total) * 100
}

type pendingFrame struct {
	sequence uint32
	lastSent int64
	attempts uint8
	active   bool
}

// RetransmitTimer implements exponential backoff with an SRTT-style
// timeout update: the base timeout is recomputed from each measured RTT
// as base = rtt + rtt/2, and any ACK resets the current timeout to base.
type RetransmitTimer struct {
	baseTimeout    int64
	maxTimeout     int64
	currentTimeout int64
	backoffFactor  uint8
}

// NewRetransmitTimer returns a timer with the given base/max timeout (ms)
// and integer backoff multiplier.
func NewRetransmitTimer(baseTimeout, maxTimeout int64, backoffFactor uint8) *RetransmitTimer {
	return &RetransmitTimer{
		baseTimeout:    baseTimeout,
		maxTimeout:     maxTimeout,
		currentTimeout: baseTimeout,
		backoffFactor:  backoffFactor,
	}
}

// DefaultRetransmitTimer returns a timer with 1000ms base, 30000ms max,
// and 2x backoff — the package defaults.
func DefaultRetransmitTimer() *RetransmitTimer {
	return NewRetransmitTimer(1000, 30000, 2)
}

// Timeout returns the current timeout value in milliseconds.
func (t *RetransmitTimer) Timeout() int64 { return t.currentTimeout }

// Backoff multiplies the current timeout by the backoff factor, capped at
// the configured maximum.
func (t *RetransmitTimer) Backoff() {
	next := t.currentTimeout * int64(t.backoffFactor)
	if next > t.maxTimeout || next < t.currentTimeout {
		next = t.maxTimeout
	}
	t.currentTimeout = next
}

// Reset returns the current timeout to the base value.
func (t *RetransmitTimer) Reset() { t.currentTimeout = t.baseTimeout }

// UpdateRTT recomputes the base timeout from a fresh RTT sample
// (base := rtt + rtt/2) and resets the current timeout to it.
func (t *RetransmitTimer) UpdateRTT(rttMs int64) {
	t.baseTimeout = rttMs + rttMs/2
	t.currentTimeout = t.baseTimeout
}

// RetransmitManager tracks frames pending acknowledgement and decides when
// they must be retransmitted or given up on.
type RetransmitManager struct {
	pending     []pendingFrame
	count       int
	maxAttempts uint8
	timer       *RetransmitTimer
	stats       RetransmitStats
}

// NewRetransmitManager returns a manager with capacity concurrent pending
// entries, giving up on a frame after maxAttempts retransmissions.
func NewRetransmitManager(capacity int, maxAttempts uint8, timer *RetransmitTimer) *RetransmitManager {
	return &RetransmitManager{
		pending:     make([]pendingFrame, capacity),
		maxAttempts: maxAttempts,
		timer:       timer,
	}
}

// Register records a newly sent frame for tracking.
func (m *RetransmitManager) Register(sequence uint32, now int64) error {
	for i := range m.pending {
		if !m.pending[i].active {
			m.pending[i] = pendingFrame{sequence: sequence, lastSent: now, attempts: 1, active: true}
			m.count++
			m.stats.FramesSent++
			return nil
		}
	}
	return ErrBufferFull
}

// Acknowledge retires sequence's pending entry and returns the observed
// RTT, updating the retransmit timer's base timeout from it. The second
// return value is false if sequence was not pending.
func (m *RetransmitManager) Acknowledge(sequence uint32, now int64) (int64, bool) {
	for i := range m.pending {
		e := &m.pending[i]
		if e.active && e.sequence == sequence {
			rtt := now - e.lastSent
			if rtt < 0 {
				rtt = 0
			}
			e.active = false
			if m.count > 0 {
				m.count--
			}
			m.stats.SuccessfulDeliveries++

			m.timer.UpdateRTT(rtt)
			m.timer.Reset()
			return rtt, true
		}
	}
	return 0, false
}

// AcknowledgeCumulative retires every pending entry whose sequence is <=
// ackSeq by signed wrap-around difference.
func (m *RetransmitManager) AcknowledgeCumulative(ackSeq uint32, now int64) {
	var toAck []uint32
	for i := range m.pending {
		e := &m.pending[i]
		if e.active {
			diff := seqDiff(ackSeq, e.sequence)
			if !seqIsPast(diff) {
				toAck = append(toAck, e.sequence)
			}
		}
	}
	for _, seq := range toAck {
		m.Acknowledge(seq, now)
	}
}

// CheckTimeouts invokes callback(sequence, exceeded) for every pending
// entry whose age has reached the current timeout. If any entry
// retransmits (exceeded == false), the timer backs off. Entries that
// exceed maxAttempts are retired as failed. It returns the number of
// entries that will be retransmitted (exceeded == false).
func (m *RetransmitManager) CheckTimeouts(now int64, callback func(sequence uint32, exceeded bool)) int {
	timeout := m.timer.Timeout()
	retransmitCount := 0

	for i := range m.pending {
		e := &m.pending[i]
		if !e.active {
			continue
		}
		elapsed := now - e.lastSent
		if elapsed < 0 {
			elapsed = 0
		}
		if elapsed >= timeout {
			exceeded := e.attempts >= m.maxAttempts
			callback(e.sequence, exceeded)
			if exceeded {
				e.active = false
				if m.count > 0 {
					m.count--
				}
				m.stats.FailedFrames++
			} else {
				retransmitCount++
			}
		}
	}

	if retransmitCount > 0 {
		m.timer.Backoff()
	}
	return retransmitCount
}

// MarkRetransmitted bumps a pending entry's attempt count and last-sent
// time.
func (m *RetransmitManager) MarkRetransmitted(sequence uint32, now int64) error {
	for i := range m.pending {
		e := &m.pending[i]
		if e.active && e.sequence == sequence {
			e.lastSent = now
			e.attempts++
			m.stats.Retransmissions++
			return nil
		}
	}
	return ErrSequenceOutOfRange
}

// PendingCount returns the number of frames currently awaiting
// acknowledgement.
func (m *RetransmitManager) PendingCount() int { return m.count }

// CurrentTimeout returns the retransmit timer's current timeout, in
// milliseconds.
func (m *RetransmitManager) CurrentTimeout() int64 { return m.timer.Timeout() }

// Stats returns a copy of the accumulated statistics.
func (m *RetransmitManager) Stats() RetransmitStats { return m.stats }

// Reset clears all pending entries and the timer, preserving statistics.
func (m *RetransmitManager) Reset() {
	for i := range m.pending {
		m.pending[i] = pendingFrame{}
	}
	m.count = 0
	m.timer.Reset()
}

// NextDeadline returns the earliest time at which a pending entry may
// need retransmission, or false if nothing is pending.
func (m *RetransmitManager) NextDeadline() (int64, bool) {
	timeout := m.timer.Timeout()
	has := false
	var min int64
	for i := range m.pending {
		e := &m.pending[i]
		if !e.active {
			continue
		}
		deadline := e.lastSent + timeout
		if !has || deadline < min {
			min = deadline
			has = true
		}
	}
	return min, has
}

// PendingSequences returns the sequence numbers currently awaiting
// acknowledgement.
func (m *RetransmitManager) PendingSequences() []uint32 {
	var out []uint32
	for i := range m.pending {
		if m.pending[i].active {
			out = append(out, m.pending[i].sequence)
		}
	}
	return out
}
