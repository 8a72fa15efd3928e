// Copyright 2026 The xtransport Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xtransport

// oooSegment records one out-of-order byte range awaiting stitching into
// the contiguous stream.
type oooSegment struct {
	seq   uint32
	len   int
	inUse bool
}

// StreamReceiver reassembles a byte stream from out-of-order DATA segments
// delivered over the ring-buffer variant receiver (spec: TCP-style ring
// buffer with out-of-order segment tracking). Unlike Reassembler, it has
// no concept of fragments or packet boundaries: every segment is a
// contiguous run of stream bytes identified by its starting sequence.
type StreamReceiver struct {
	ring       *RingBuffer
	recvNext   uint32
	window     uint32
	segments   []oooSegment
	segmentBuf [][]byte
}

// NewStreamReceiver returns a StreamReceiver with the given ring capacity,
// starting at recvNext, holding up to maxSegments out-of-order segments.
func NewStreamReceiver(capacity int, recvNext uint32, maxSegments int) *StreamReceiver {
	segBuf := make([][]byte, maxSegments)
	for i := range segBuf {
		segBuf[i] = make([]byte, capacity)
	}
	return &StreamReceiver{
		ring:       NewRingBuffer(capacity),
		recvNext:   recvNext,
		window:     uint32(capacity),
		segments:   make([]oooSegment, maxSegments),
		segmentBuf: segBuf,
	}
}

// RecvNext returns the next expected stream sequence number.
func (s *StreamReceiver) RecvNext() uint32 { return s.recvNext }

// ReadableLen returns the number of contiguous, in-order bytes available
// to read.
func (s *StreamReceiver) ReadableLen() int { return s.ring.Len() }

// Receive delivers one segment of stream bytes starting at seq. A segment
// at the expected offset is appended directly and then stitches any
// buffered out-of-order segments that have become contiguous. A segment
// ahead of recvNext is buffered in the OOO segment table. An old duplicate
// (entirely behind recvNext, detected via wrap-around signed difference)
// is silently dropped. A segment whose offset falls at or beyond the
// window fails with ErrSequenceOutOfRange.
func (s *StreamReceiver) Receive(seq uint32, data []byte) error {
	offset := seqDiff(seq, s.recvNext)

	if offset == 0 {
		if err := s.ring.WriteAll(data); err != nil {
			return err
		}
		s.recvNext += uint32(len(data))
		s.stitch()
		return nil
	}

	if seqIsPast(offset) {
		// Behind recvNext: either an old duplicate or already consumed.
		return nil
	}

	if offset >= s.window {
		return ErrSequenceOutOfRange
	}

	return s.bufferSegment(seq, data)
}

func (s *StreamReceiver) bufferSegment(seq uint32, data []byte) error {
	for i := range s.segments {
		if s.segments[i].inUse && s.segments[i].seq == seq {
			return nil // duplicate out-of-order segment
		}
	}
	for i := range s.segments {
		if !s.segments[i].inUse {
			s.segments[i] = oooSegment{seq: seq, len: len(data), inUse: true}
			copy(s.segmentBuf[i], data)
			return nil
		}
	}
	return ErrBufferFull
}

// stitch pulls buffered out-of-order segments into the ring as they
// become contiguous with recvNext, repeating until no progress is made.
func (s *StreamReceiver) stitch() {
	for {
		progressed := false
		for i := range s.segments {
			if !s.segments[i].inUse {
				continue
			}
			if s.segments[i].seq != s.recvNext {
				continue
			}
			seg := s.segmentBuf[i][:s.segments[i].len]
			if err := s.ring.WriteAll(seg); err != nil {
				return
			}
			s.recvNext += uint32(s.segments[i].len)
			s.segments[i].inUse = false
			progressed = true
		}
		if !progressed {
			return
		}
	}
}

// Read copies up to len(dst) readable bytes out of the stream.
func (s *StreamReceiver) Read(dst []byte) int { return s.ring.Read(dst) }

// PendingSegments returns the number of buffered out-of-order segments.
func (s *StreamReceiver) PendingSegments() int {
	n := 0
	for i := range s.segments {
		if s.segments[i].inUse {
			n++
		}
	}
	return n
}
