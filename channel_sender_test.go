package xtransport

import "testing"

// TestSenderSendSmallPacket mirrors channel/sender.rs's
// test_sender_send_small_packet.
func TestSenderSendSmallPacket(t *testing.T) {
	s := NewSender(NewConfig())
	carrier := NewLoopbackCarrier(4096)

	n, err := s.SendPacket(carrier, []byte("Hello"), 0)
	if err != nil {
		t.Fatalf("SendPacket: %v", err)
	}
	if n != 1 {
		t.Fatalf("fragment count = %d, want 1", n)
	}
	if s.InFlight() != 1 {
		t.Fatalf("InFlight = %d, want 1", s.InFlight())
	}
}

// TestSenderSendLargePacket mirrors test_sender_send_large_packet: a
// 25-byte payload over a 10-byte-payload frame size fragments into 3.
func TestSenderSendLargePacket(t *testing.T) {
	cfg := NewConfig(WithMaxFrameSize(34)) // 10 payload + 24 header
	s := NewSender(cfg)
	carrier := NewLoopbackCarrier(4096)

	data := make([]byte, 25)
	n, err := s.SendPacket(carrier, data, 0)
	if err != nil {
		t.Fatalf("SendPacket: %v", err)
	}
	if n != 3 {
		t.Fatalf("fragment count = %d, want 3", n)
	}
}

// TestSenderAckProcessing mirrors test_sender_ack_processing.
func TestSenderAckProcessing(t *testing.T) {
	s := NewSender(NewConfig())
	carrier := NewLoopbackCarrier(4096)

	if _, err := s.SendPacket(carrier, []byte("Hello"), 0); err != nil {
		t.Fatalf("SendPacket #1: %v", err)
	}
	if _, err := s.SendPacket(carrier, []byte("World"), 0); err != nil {
		t.Fatalf("SendPacket #2: %v", err)
	}
	if s.InFlight() != 2 {
		t.Fatalf("InFlight = %d, want 2", s.InFlight())
	}

	s.ProcessAck(1, 100)
	if s.InFlight() != 0 {
		t.Fatalf("InFlight after cumulative ack = %d, want 0", s.InFlight())
	}
}

func TestSenderCloseSendsFinAndClosesChannel(t *testing.T) {
	s := NewSender(NewConfig())
	carrier := NewLoopbackCarrier(4096)

	if err := s.Close(carrier); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if s.State() != ChannelClosing {
		t.Fatalf("State = %v, want Closing", s.State())
	}
	if carrier.Available() == 0 {
		t.Fatalf("expected a FIN frame to be written")
	}
}

func TestSenderCheckRetransmitResends(t *testing.T) {
	cfg := NewConfig(WithRetransmitTimeout(10))
	s := NewSender(cfg)
	carrier := NewLoopbackCarrier(4096)

	if _, err := s.SendPacket(carrier, []byte("Hello"), 0); err != nil {
		t.Fatalf("SendPacket: %v", err)
	}
	carrier.Clear()

	n, err := s.CheckRetransmit(carrier, 100)
	if err != nil {
		t.Fatalf("CheckRetransmit: %v", err)
	}
	if n != 1 {
		t.Fatalf("retransmit count = %d, want 1", n)
	}
	if carrier.Available() == 0 {
		t.Fatalf("expected retransmitted frame to be written to carrier")
	}
}
