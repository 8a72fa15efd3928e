package xtransport

import "testing"

// TestReceiverSingleFrame mirrors channel/receiver.rs's
// test_receiver_single_frame.
func TestReceiverSingleFrame(t *testing.T) {
	r := NewReceiver(NewConfig())
	frame := NewDataFrame(0, 0, 1, 0, 1, []byte("Hello"))

	ready, err := r.ProcessFrame(frame, 0)
	if err != nil {
		t.Fatalf("ProcessFrame: %v", err)
	}
	if !ready {
		t.Fatalf("expected packet ready")
	}
	if !r.HasData() {
		t.Fatalf("expected HasData() == true")
	}

	buf := make([]byte, 32)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 5 || string(buf[:5]) != "Hello" {
		t.Fatalf("Read = %q, want %q", buf[:n], "Hello")
	}
}

func TestReceiverMultiFragmentPacket(t *testing.T) {
	r := NewReceiver(NewConfig(WithMaxFrameSize(30))) // 6 payload + 24 header
	f1 := NewDataFrame(0, 0, 1, 0, 2, []byte("Hello "))
	f2 := NewDataFrame(1, 0, 1, 1, 2, []byte("World"))

	if ready, err := r.ProcessFrame(f1, 0); err != nil || ready {
		t.Fatalf("first fragment: (%v, %v), want (false, nil)", ready, err)
	}
	ready, err := r.ProcessFrame(f2, 0)
	if err != nil || !ready {
		t.Fatalf("second fragment: (%v, %v), want (true, nil)", ready, err)
	}

	buf := make([]byte, 32)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(buf[:n]) != "Hello World" {
		t.Fatalf("Read = %q, want %q", buf[:n], "Hello World")
	}
}

func TestReceiverDuplicateFrameIgnored(t *testing.T) {
	r := NewReceiver(NewConfig())
	frame := NewDataFrame(0, 0, 1, 0, 1, []byte("Hello"))

	if _, err := r.ProcessFrame(frame, 0); err != nil {
		t.Fatalf("ProcessFrame: %v", err)
	}
	buf := make([]byte, 32)
	if _, err := r.Read(buf); err != nil {
		t.Fatalf("Read: %v", err)
	}

	ready, err := r.ProcessFrame(frame, 0)
	if err != nil || ready {
		t.Fatalf("duplicate frame: (%v, %v), want (false, nil)", ready, err)
	}
}

func TestReceiverFinTransitionsToClosing(t *testing.T) {
	r := NewReceiver(NewConfig())
	ready, err := r.ProcessFrame(NewFinFrame(0), 0)
	if err != nil || ready {
		t.Fatalf("FIN: (%v, %v), want (false, nil)", ready, err)
	}
	if r.State() != ChannelClosing {
		t.Fatalf("State = %v, want Closing", r.State())
	}
}
