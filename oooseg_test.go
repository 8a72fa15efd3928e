package xtransport

import "testing"

// TestStreamReceiverOutOfOrder mirrors spec §4.9/§8 scenario 5: out-of-order
// bytes over the ring-buffer variant receiver. capacity 4096, recv_next=1000.
// Segments arrive at seq=1100/len=50, then seq=1050/len=50, then
// seq=1000/len=50; after the third, readable_len == 150 and the bytes read
// back in original order.
func TestStreamReceiverOutOfOrder(t *testing.T) {
	sr := NewStreamReceiver(4096, 1000, 8)

	seg1100 := make([]byte, 50)
	for i := range seg1100 {
		seg1100[i] = byte('A' + i%26)
	}
	seg1050 := make([]byte, 50)
	for i := range seg1050 {
		seg1050[i] = byte('a' + i%26)
	}
	seg1000 := make([]byte, 50)
	for i := range seg1000 {
		seg1000[i] = byte('0' + i%10)
	}

	if err := sr.Receive(1100, seg1100); err != nil {
		t.Fatalf("Receive(1100): %v", err)
	}
	if sr.ReadableLen() != 0 {
		t.Fatalf("ReadableLen after first OOO segment = %d, want 0", sr.ReadableLen())
	}
	if sr.PendingSegments() != 1 {
		t.Fatalf("PendingSegments = %d, want 1", sr.PendingSegments())
	}

	if err := sr.Receive(1050, seg1050); err != nil {
		t.Fatalf("Receive(1050): %v", err)
	}
	if sr.ReadableLen() != 0 {
		t.Fatalf("ReadableLen after second OOO segment = %d, want 0", sr.ReadableLen())
	}
	if sr.PendingSegments() != 2 {
		t.Fatalf("PendingSegments = %d, want 2", sr.PendingSegments())
	}

	if err := sr.Receive(1000, seg1000); err != nil {
		t.Fatalf("Receive(1000): %v", err)
	}
	if sr.ReadableLen() != 150 {
		t.Fatalf("ReadableLen after third segment = %d, want 150", sr.ReadableLen())
	}
	if sr.RecvNext() != 1150 {
		t.Fatalf("RecvNext = %d, want 1150", sr.RecvNext())
	}
	if sr.PendingSegments() != 0 {
		t.Fatalf("PendingSegments after stitch = %d, want 0", sr.PendingSegments())
	}

	out := make([]byte, 150)
	n := sr.Read(out)
	if n != 150 {
		t.Fatalf("Read = %d, want 150", n)
	}
	want := append(append(append([]byte{}, seg1000...), seg1050...), seg1100...)
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("byte %d = %q, want %q", i, out[i], want[i])
		}
	}
}

// TestStreamReceiverInOrder verifies the direct, non-OOO fast path.
func TestStreamReceiverInOrder(t *testing.T) {
	sr := NewStreamReceiver(64, 0, 4)
	if err := sr.Receive(0, []byte("hello")); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if sr.ReadableLen() != 5 || sr.RecvNext() != 5 {
		t.Fatalf("ReadableLen=%d RecvNext=%d, want 5,5", sr.ReadableLen(), sr.RecvNext())
	}
}

// TestStreamReceiverOldDuplicateDropped verifies a segment entirely behind
// recvNext is silently ignored.
func TestStreamReceiverOldDuplicateDropped(t *testing.T) {
	sr := NewStreamReceiver(64, 100, 4)
	if err := sr.Receive(50, []byte("stale")); err != nil {
		t.Fatalf("Receive(50): %v", err)
	}
	if sr.ReadableLen() != 0 || sr.RecvNext() != 100 {
		t.Fatalf("old duplicate mutated state: ReadableLen=%d RecvNext=%d", sr.ReadableLen(), sr.RecvNext())
	}
}

// TestStreamReceiverOutOfRange verifies a segment at/beyond the window
// fails with ErrSequenceOutOfRange.
func TestStreamReceiverOutOfRange(t *testing.T) {
	sr := NewStreamReceiver(16, 0, 4)
	if err := sr.Receive(100, []byte("x")); err != ErrSequenceOutOfRange {
		t.Fatalf("Receive(100) = %v, want ErrSequenceOutOfRange", err)
	}
}
