// Copyright 2026 The xtransport Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xtransport

// ReassemblyEntry holds the in-progress reconstruction of one packet's
// fragments.
type ReassemblyEntry struct {
	PacketID         uint16
	buffer           []byte
	expectedSize     int
	haveExpectedSize bool
	TotalFragments   uint8
	receivedFrags    [256]bool
	ReceivedCount    uint8
	StartTime        int64
	InUse            bool
}

func (e *ReassemblyEntry) init(packetID uint16, totalFragments uint8, timestamp int64) {
	e.PacketID = packetID
	e.expectedSize = 0
	e.haveExpectedSize = false
	e.TotalFragments = totalFragments
	e.receivedFrags = [256]bool{}
	e.ReceivedCount = 0
	e.StartTime = timestamp
	e.InUse = true
}

// addFragment copies payload into the entry's buffer at its fragment
// offset and reports whether the packet is now complete. A duplicate
// fragment index is silently ignored (returns false, nil).
func (e *ReassemblyEntry) addFragment(fragmentIndex, totalFragments uint8, payload []byte, maxFragmentSize int) (bool, error) {
	if fragmentIndex >= totalFragments {
		return false, ErrInvalidFrame
	}
	if e.receivedFrags[fragmentIndex] {
		return false, nil
	}

	offset := int(fragmentIndex) * maxFragmentSize
	end := offset + len(payload)
	if end > len(e.buffer) {
		return false, ErrBufferTooSmall
	}

	copy(e.buffer[offset:end], payload)
	e.receivedFrags[fragmentIndex] = true
	e.ReceivedCount++

	if fragmentIndex == totalFragments-1 {
		e.expectedSize = end
		e.haveExpectedSize = true
	}

	return e.ReceivedCount == totalFragments, nil
}

// data returns the reassembled bytes if the entry is complete.
func (e *ReassemblyEntry) data() ([]byte, bool) {
	if e.ReceivedCount != e.TotalFragments {
		return nil, false
	}
	size := e.expectedSize
	if !e.haveExpectedSize {
		size = 0
	}
	return e.buffer[:size], true
}

func (e *ReassemblyEntry) clear() {
	e.InUse = false
	e.expectedSize = 0
	e.haveExpectedSize = false
	e.ReceivedCount = 0
	e.receivedFrags = [256]bool{}
}

// isTimedOut reports whether this entry has sat in-use for at least
// timeout milliseconds as of now.
func (e *ReassemblyEntry) isTimedOut(now, timeout int64) bool {
	if !e.InUse {
		return false
	}
	age := now - e.StartTime
	if age < 0 {
		age = 0
	}
	return age >= timeout
}

// MissingFragments returns the fragment indices not yet received.
func (e *ReassemblyEntry) MissingFragments() []uint8 {
	var out []uint8
	for i := uint8(0); i < e.TotalFragments; i++ {
		if !e.receivedFrags[i] {
			out = append(out, i)
		}
		if i == 255 {
			break
		}
	}
	return out
}

// Reassembler reconstructs application packets from DATA frame fragments,
// supporting out-of-order arrival, duplicate fragments, and timeout-driven
// slot eviction under load.
type Reassembler struct {
	entries         []ReassemblyEntry
	maxFragmentSize int
	timeout         int64
	activeCount     int
}

// NewReassembler returns a Reassembler with slots concurrent reassembly
// slots, each able to hold up to maxPacketSize reassembled bytes, evicting
// an entry once timeoutMs have passed since its first fragment arrived.
func NewReassembler(slots int, maxFragmentSize, maxPacketSize int, timeoutMs int64) *Reassembler {
	entries := make([]ReassemblyEntry, slots)
	for i := range entries {
		entries[i].buffer = make([]byte, maxPacketSize)
	}
	return &Reassembler{
		entries:         entries,
		maxFragmentSize: maxFragmentSize,
		timeout:         timeoutMs,
	}
}

// ProcessFrame feeds one DATA frame's fragment into the reassembler. A
// single-fragment packet (TotalFragments == 1) short-circuits and reports
// complete immediately without occupying a slot. It returns the packet id
// and true when the packet is now complete.
func (r *Reassembler) ProcessFrame(f Frame, now int64) (uint16, bool, error) {
	if f.TotalFragments <= 1 {
		return f.PacketID, true, nil
	}

	idx, err := r.findOrCreateEntry(f.PacketID, f.TotalFragments, now)
	if err != nil {
		return 0, false, err
	}

	e := &r.entries[idx]
	complete, err := e.addFragment(f.FragmentIndex, f.TotalFragments, f.Payload, r.maxFragmentSize)
	if err != nil {
		return 0, false, err
	}
	return f.PacketID, complete, nil
}

func (r *Reassembler) findOrCreateEntry(packetID uint16, totalFragments uint8, now int64) (int, error) {
	for i := range r.entries {
		if r.entries[i].InUse && r.entries[i].PacketID == packetID {
			return i, nil
		}
	}
	for i := range r.entries {
		if !r.entries[i].InUse {
			r.entries[i].init(packetID, totalFragments, now)
			r.activeCount++
			return i, nil
		}
	}
	for i := range r.entries {
		if r.entries[i].isTimedOut(now, r.timeout) {
			r.entries[i].init(packetID, totalFragments, now)
			return i, nil
		}
	}
	return 0, ErrBufferFull
}

// TakeCompleted copies the reassembled bytes for packetID into dst and
// frees the slot. It fails with ErrIncompleteFragment if the packet is not
// yet complete, ErrBufferTooSmall if dst is too small.
func (r *Reassembler) TakeCompleted(packetID uint16, dst []byte) (int, error) {
	for i := range r.entries {
		e := &r.entries[i]
		if !e.InUse || e.PacketID != packetID {
			continue
		}
		data, ok := e.data()
		if !ok {
			return 0, ErrIncompleteFragment
		}
		if len(dst) < len(data) {
			return 0, ErrBufferTooSmall
		}
		n := copy(dst, data)
		e.clear()
		if r.activeCount > 0 {
			r.activeCount--
		}
		return n, nil
	}
	return 0, ErrIncompleteFragment
}

// FreeEntry discards any in-progress reassembly for packetID.
func (r *Reassembler) FreeEntry(packetID uint16) {
	for i := range r.entries {
		e := &r.entries[i]
		if e.InUse && e.PacketID == packetID {
			e.clear()
			if r.activeCount > 0 {
				r.activeCount--
			}
			return
		}
	}
}

// Cleanup evicts entries whose start time is older than the configured
// timeout and returns the count evicted.
func (r *Reassembler) Cleanup(now int64) int {
	cleaned := 0
	for i := range r.entries {
		e := &r.entries[i]
		if e.isTimedOut(now, r.timeout) {
			e.clear()
			if r.activeCount > 0 {
				r.activeCount--
			}
			cleaned++
		}
	}
	return cleaned
}

// ActiveCount returns the number of in-progress reassembly slots.
func (r *Reassembler) ActiveCount() int { return r.activeCount }

// HasPending reports whether any reassembly is in progress.
func (r *Reassembler) HasPending() bool { return r.activeCount > 0 }

// MissingFragments returns the fragment indices still missing for
// packetID, or nil, false if no such entry exists.
func (r *Reassembler) MissingFragments(packetID uint16) ([]uint8, bool) {
	for i := range r.entries {
		e := &r.entries[i]
		if e.InUse && e.PacketID == packetID {
			return e.MissingFragments(), true
		}
	}
	return nil, false
}
