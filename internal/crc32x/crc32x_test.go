package crc32x

import "testing"

// Test vectors carried over from the original implementation's checksum
// unit tests (core/checksum.rs): compute(&[]) == 0, compute(b"123456789")
// == 0xCBF43926 (the canonical CRC-32/IEEE-802.3 check value).
func TestComputeEmpty(t *testing.T) {
	if got := Compute(nil); got != 0 {
		t.Fatalf("Compute(nil) = %#x, want 0", got)
	}
}

func TestComputeCheckValue(t *testing.T) {
	const want = 0xCBF43926
	if got := Compute([]byte("123456789")); got != want {
		t.Fatalf("Compute(123456789) = %#x, want %#x", got, want)
	}
}

func TestIncrementalMatchesOneShot(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	want := Compute(data)

	d := New()
	d.Update(data[:10])
	d.Update(data[10:23])
	d.Update(data[23:])
	if got := d.Sum(); got != want {
		t.Fatalf("incremental Sum = %#x, want %#x", got, want)
	}
}

func TestComputeSlicesMatchesConcat(t *testing.T) {
	a := []byte("header-bytes")
	b := []byte("payload-bytes-of-arbitrary-length")
	want := Compute(append(append([]byte{}, a...), b...))
	if got := ComputeSlices(a, b); got != want {
		t.Fatalf("ComputeSlices = %#x, want %#x", got, want)
	}
}

func TestVerifyDetectsSingleByteFlip(t *testing.T) {
	data := []byte("frame header and payload bytes")
	sum := Compute(data)
	if !Verify(data, sum) {
		t.Fatalf("Verify should accept unmodified data")
	}
	corrupt := append([]byte{}, data...)
	corrupt[3] ^= 0x01
	if Verify(corrupt, sum) {
		t.Fatalf("Verify should reject single-bit corruption")
	}
}
