package xtransport

import "testing"

// TestRetransmitRegisterAndAcknowledge mirrors reliable/retransmit.rs's
// test_register_and_acknowledge.
func TestRetransmitRegisterAndAcknowledge(t *testing.T) {
	m := NewRetransmitManager(8, 5, DefaultRetransmitTimer())

	if err := m.Register(0, 100); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if m.PendingCount() != 1 {
		t.Fatalf("PendingCount = %d, want 1", m.PendingCount())
	}

	rtt, ok := m.Acknowledge(0, 150)
	if !ok || rtt != 50 {
		t.Fatalf("Acknowledge = (%d, %v), want (50, true)", rtt, ok)
	}
	if m.PendingCount() != 0 {
		t.Fatalf("PendingCount after ack = %d, want 0", m.PendingCount())
	}
}

// TestRetransmitTimeoutDetection mirrors test_timeout_detection.
func TestRetransmitTimeoutDetection(t *testing.T) {
	timer := NewRetransmitTimer(100, 1000, 2)
	m := NewRetransmitManager(8, 5, timer)

	if err := m.Register(0, 0); err != nil {
		t.Fatalf("Register: %v", err)
	}

	var seen []uint32
	n := m.CheckTimeouts(50, func(seq uint32, exceeded bool) {
		seen = append(seen, seq)
	})
	if n != 0 || len(seen) != 0 {
		t.Fatalf("CheckTimeouts(50) fired before timeout: n=%d seen=%v", n, seen)
	}

	n = m.CheckTimeouts(150, func(seq uint32, exceeded bool) {
		seen = append(seen, seq)
		if exceeded {
			t.Fatalf("seq %d should not be exceeded on first timeout", seq)
		}
	})
	if n != 1 || len(seen) != 1 || seen[0] != 0 {
		t.Fatalf("CheckTimeouts(150) = %d fired %v, want 1 fired [0]", n, seen)
	}
}

// TestRetransmitMaxRetransmit mirrors test_max_retransmit: after two
// MarkRetransmitted calls (three total attempts) with maxAttempts=2, the
// next timeout reports exceeded.
func TestRetransmitMaxRetransmit(t *testing.T) {
	timer := NewRetransmitTimer(100, 1000, 2)
	m := NewRetransmitManager(8, 2, timer)

	if err := m.Register(0, 0); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := m.MarkRetransmitted(0, 100); err != nil {
		t.Fatalf("MarkRetransmitted #1: %v", err)
	}
	if err := m.MarkRetransmitted(0, 200); err != nil {
		t.Fatalf("MarkRetransmitted #2: %v", err)
	}

	var exceeded bool
	m.CheckTimeouts(500, func(seq uint32, exc bool) {
		exceeded = exc
	})
	if !exceeded {
		t.Fatalf("expected exceeded = true after exhausting max attempts")
	}
	if m.Stats().FailedFrames != 1 {
		t.Fatalf("FailedFrames = %d, want 1", m.Stats().FailedFrames)
	}
}

// TestRetransmitExponentialBackoff mirrors test_exponential_backoff:
// 100 -> 200 -> 400 -> capped at 1000 after further backoffs.
func TestRetransmitExponentialBackoff(t *testing.T) {
	timer := NewRetransmitTimer(100, 1000, 2)

	if timer.Timeout() != 100 {
		t.Fatalf("initial timeout = %d, want 100", timer.Timeout())
	}
	timer.Backoff()
	if timer.Timeout() != 200 {
		t.Fatalf("after 1 backoff = %d, want 200", timer.Timeout())
	}
	timer.Backoff()
	if timer.Timeout() != 400 {
		t.Fatalf("after 2 backoffs = %d, want 400", timer.Timeout())
	}
	timer.Backoff()
	if timer.Timeout() != 800 {
		t.Fatalf("after 3 backoffs = %d, want 800", timer.Timeout())
	}
	timer.Backoff()
	if timer.Timeout() != 1000 {
		t.Fatalf("after 4 backoffs = %d, want capped at 1000", timer.Timeout())
	}
}

// TestRetransmitCumulativeAck mirrors test_cumulative_ack: registering
// sequences 0,1,2 then AcknowledgeCumulative(1, 200) leaves only 2 pending.
func TestRetransmitCumulativeAck(t *testing.T) {
	m := NewRetransmitManager(8, 5, DefaultRetransmitTimer())

	for seq := uint32(0); seq < 3; seq++ {
		if err := m.Register(seq, 100); err != nil {
			t.Fatalf("Register(%d): %v", seq, err)
		}
	}
	if m.PendingCount() != 3 {
		t.Fatalf("PendingCount = %d, want 3", m.PendingCount())
	}

	m.AcknowledgeCumulative(1, 200)

	if m.PendingCount() != 1 {
		t.Fatalf("PendingCount after cumulative ack = %d, want 1", m.PendingCount())
	}
	remaining := m.PendingSequences()
	if len(remaining) != 1 || remaining[0] != 2 {
		t.Fatalf("PendingSequences = %v, want [2]", remaining)
	}
}
