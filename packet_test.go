package xtransport

import "testing"

// TestFragmentCount mirrors core/packet.rs's test_fragment_count: 2500
// bytes / 1024 max_payload = 3 fragments; /512 = 5 fragments.
func TestFragmentCount(t *testing.T) {
	p, err := NewPacket(1, make([]byte, 2500))
	if err != nil {
		t.Fatalf("NewPacket: %v", err)
	}
	if got := p.FragmentCount(1024); got != 3 {
		t.Fatalf("FragmentCount(1024) = %d, want 3", got)
	}
	if got := p.FragmentCount(512); got != 5 {
		t.Fatalf("FragmentCount(512) = %d, want 5", got)
	}
}

func TestFragmentCountEmpty(t *testing.T) {
	p, _ := NewPacket(1, nil)
	if got := p.FragmentCount(100); got != 1 {
		t.Fatalf("FragmentCount of empty packet = %d, want 1", got)
	}
}

// TestFragmentData mirrors core/packet.rs's test_fragment_data: 100 bytes
// / 30 max_payload.
func TestFragmentData(t *testing.T) {
	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(i)
	}
	p, _ := NewPacket(1, data)

	if got := p.FragmentCount(30); got != 4 {
		t.Fatalf("FragmentCount(30) = %d, want 4", got)
	}

	frag0, ok := p.FragmentData(0, 30)
	if !ok || len(frag0) != 30 {
		t.Fatalf("fragment 0: got %d bytes ok=%v, want 30 bytes", len(frag0), ok)
	}
	frag3, ok := p.FragmentData(3, 30)
	if !ok || len(frag3) != 10 {
		t.Fatalf("fragment 3: got %d bytes ok=%v, want 10 bytes (tail)", len(frag3), ok)
	}
	if _, ok := p.FragmentData(4, 30); ok {
		t.Fatalf("fragment 4 should be out of range")
	}
}

func TestPacketTooLarge(t *testing.T) {
	if _, err := NewPacket(1, make([]byte, MaxPacketSize+1)); err != ErrPacketTooLarge {
		t.Fatalf("NewPacket over MaxPacketSize = %v, want ErrPacketTooLarge", err)
	}
}
