package xtransport

import "testing"

// TestSendWindowBasic mirrors buffer/window.rs's test_send_window_basic.
func TestSendWindowBasic(t *testing.T) {
	w := NewSendWindow(16, 8, 0)

	if got := w.Available(); got != 8 {
		t.Fatalf("Available = %d, want 8", got)
	}

	seq, err := w.AddFrame([]byte{1, 2, 3}, 100)
	if err != nil || seq != 0 {
		t.Fatalf("AddFrame #1 = (%d, %v), want (0, nil)", seq, err)
	}
	if w.InFlight() != 1 {
		t.Fatalf("InFlight = %d, want 1", w.InFlight())
	}

	seq, err = w.AddFrame([]byte{4, 5, 6}, 101)
	if err != nil || seq != 1 {
		t.Fatalf("AddFrame #2 = (%d, %v), want (1, nil)", seq, err)
	}
	if w.InFlight() != 2 {
		t.Fatalf("InFlight = %d, want 2", w.InFlight())
	}

	acked := w.AckCumulative(1)
	if acked != 2 {
		t.Fatalf("AckCumulative(1) acked = %d, want 2", acked)
	}
	if w.InFlight() != 0 {
		t.Fatalf("InFlight after ack = %d, want 0", w.InFlight())
	}
}

// TestSendWindowFull mirrors buffer/window.rs's test_send_window_full.
func TestSendWindowFull(t *testing.T) {
	w := NewSendWindow(4, 4, 0)
	for i := 0; i < 4; i++ {
		if _, err := w.AddFrame([]byte{byte(i)}, 0); err != nil {
			t.Fatalf("AddFrame #%d: %v", i, err)
		}
	}
	if !w.IsFull() {
		t.Fatalf("expected window full")
	}
	if _, err := w.AddFrame([]byte{4}, 0); err != ErrWindowFull {
		t.Fatalf("AddFrame over capacity = %v, want ErrWindowFull", err)
	}
}

func TestSendWindowFindRetransmitBounds(t *testing.T) {
	w := NewSendWindow(8, 4, 0)
	for i := 0; i < 3; i++ {
		w.AddFrame([]byte{byte(i)}, 0)
	}
	cands := w.FindRetransmit(1000, 100, 5)
	if len(cands) != 3 {
		t.Fatalf("FindRetransmit = %d candidates, want 3", len(cands))
	}
	for _, c := range cands {
		if c.Sequence < w.BaseSequence() || c.Sequence >= w.NextSequence() {
			t.Fatalf("candidate %d out of [%d, %d)", c.Sequence, w.BaseSequence(), w.NextSequence())
		}
	}
}

// TestReceiveWindowBasic mirrors buffer/window.rs's test_receive_window_basic.
func TestReceiveWindowBasic(t *testing.T) {
	w := NewReceiveWindow(16, 8, 0)

	res, err := w.Receive(0)
	if err != nil || res != ReceiveNew {
		t.Fatalf("Receive(0) = (%v, %v), want (New, nil)", res, err)
	}
	res, err = w.Receive(0)
	if err != nil || res != ReceiveDuplicate {
		t.Fatalf("Receive(0) dup = (%v, %v), want (Duplicate, nil)", res, err)
	}

	res, err = w.Receive(2)
	if err != nil || res != ReceiveNew {
		t.Fatalf("Receive(2) = (%v, %v), want (New, nil)", res, err)
	}
	res, err = w.Receive(1)
	if err != nil || res != ReceiveNew {
		t.Fatalf("Receive(1) = (%v, %v), want (New, nil)", res, err)
	}

	if ack := w.Advance(); ack != 3 {
		t.Fatalf("Advance() = %d, want 3", ack)
	}
}

// TestReceiveWindowOutOfRange mirrors buffer/window.rs's test_receive_window_out_of_range.
func TestReceiveWindowOutOfRange(t *testing.T) {
	w := NewReceiveWindow(8, 4, 0)
	if _, err := w.Receive(10); err != ErrSequenceOutOfRange {
		t.Fatalf("Receive(10) = %v, want ErrSequenceOutOfRange", err)
	}
}

// TestMissingSequences mirrors buffer/window.rs's test_missing_sequences.
func TestMissingSequences(t *testing.T) {
	w := NewReceiveWindow(16, 8, 0)
	w.Receive(0)
	w.Receive(2)
	w.Receive(4)

	missing := w.MissingSequences()
	if len(missing) != 2 {
		t.Fatalf("MissingSequences = %v, want 2 entries", missing)
	}
	has := map[uint32]bool{}
	for _, s := range missing {
		has[s] = true
	}
	if !has[1] || !has[3] {
		t.Fatalf("MissingSequences = %v, want {1,3}", missing)
	}
}
