package block

import (
	"bytes"
	"math/rand"
	"testing"
)

// roundTrip encodes src at the given level/extensions setting and decodes
// the result back, returning the decompressed bytes.
func roundTrip(t *testing.T, src []byte, level int, ext bool) []byte {
	t.Helper()

	enc := NewEncoder(level)
	enc.SetExtensions(ext)

	compressed := make([]byte, OutputSize)
	n, err := enc.EncodeBlock(compressed, src)
	if err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	compressed = compressed[:n]

	// DecodeBlock's fast phase may read a little past the declared
	// compressed length; give it the same slack a pipeline ring buffer
	// would provide instead of a tightly sized slice.
	padded := make([]byte, OutputSize)
	copy(padded, compressed)

	decompressed := make([]byte, OutputSize)
	dn, err := DecodeBlock(decompressed, padded, ext)
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}
	return decompressed[:dn]
}

func checkRoundTrip(t *testing.T, src []byte, level int, ext bool) {
	t.Helper()
	got := roundTrip(t, src, level, ext)
	if !bytes.Equal(got, src) {
		t.Fatalf("round trip mismatch at level=%d ext=%v: got %d bytes, want %d", level, ext, len(got), len(src))
	}
}

func TestRoundTripEmpty(t *testing.T) {
	checkRoundTrip(t, nil, 0, false)
	checkRoundTrip(t, nil, 4, true)
}

func TestRoundTripTinyLiteral(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 16, 17} {
		checkRoundTrip(t, bytes.Repeat([]byte{0x5a}, n), 0, false)
	}
}

func TestRoundTripRepeatedByte(t *testing.T) {
	src := bytes.Repeat([]byte{'a'}, 100000)
	for level := 0; level <= 4; level++ {
		checkRoundTrip(t, src, level, false)
		checkRoundTrip(t, src, level, true)
	}
}

func TestRoundTripRepeatedPattern(t *testing.T) {
	pattern := []byte("the quick brown fox jumps over the lazy dog, ")
	src := bytes.Repeat(pattern, 5000)
	checkRoundTrip(t, src, 0, false)
	checkRoundTrip(t, src, 3, false)
	checkRoundTrip(t, src, 3, true)
}

func TestRoundTripRandom(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	src := make([]byte, 70000)
	r.Read(src)
	checkRoundTrip(t, src, 0, false)
	checkRoundTrip(t, src, 2, false)
}

func TestRoundTripMaxBlockSize(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	src := make([]byte, BlockSize)
	// Mostly compressible, with some noise, to exercise both literal runs
	// and long match chains near the edges of the block.
	for i := range src {
		if i%37 == 0 {
			src[i] = byte(r.Intn(256))
		} else {
			src[i] = byte(i % 251)
		}
	}
	checkRoundTrip(t, src, 0, false)
	checkRoundTrip(t, src, 5, false)
	checkRoundTrip(t, src, 5, true)
}

func TestEncodeBlockTooLarge(t *testing.T) {
	enc := NewEncoder(0)
	dst := make([]byte, OutputSize)
	_, err := enc.EncodeBlock(dst, make([]byte, BlockSize+1))
	if err != ErrBlockTooLarge {
		t.Fatalf("got %v, want ErrBlockTooLarge", err)
	}
}

func TestDecodeMalformedSize(t *testing.T) {
	src := make([]byte, OutputSize)
	putUint24LE(src, BlockSize+1)
	_, err := DecodeBlock(make([]byte, OutputSize), src, false)
	if err != ErrMalformedBlock {
		t.Fatalf("got %v, want ErrMalformedBlock", err)
	}
}

func TestMatchLenCodeTable(t *testing.T) {
	cases := []struct {
		k    int
		code uint8
	}{
		{4, 3}, {16, 15}, {17, 15}, {31, 15},
		{32, 0}, {47, 0}, {48, 1}, {63, 1}, {64, 2},
	}
	for _, c := range cases {
		if got := matchLenCode[c.k]; got != c.code {
			t.Errorf("matchLenCode[%d] = %d, want %d", c.k, got, c.code)
		}
	}
}

func TestDecodedMatchLen(t *testing.T) {
	if got := decodedMatchLen(0, true); got != 32 {
		t.Errorf("ext code 0 = %d, want 32", got)
	}
	if got := decodedMatchLen(1, true); got != 48 {
		t.Errorf("ext code 1 = %d, want 48", got)
	}
	if got := decodedMatchLen(2, true); got != 64 {
		t.Errorf("ext code 2 = %d, want 64", got)
	}
	if got := decodedMatchLen(3, true); got != 4 {
		t.Errorf("non-ext-range code 3 under ext = %d, want 4", got)
	}
	if got := decodedMatchLen(15, false); got != 16 {
		t.Errorf("code 15 without ext = %d, want 16", got)
	}
}

func BenchmarkEncodeBlockLevel0(b *testing.B) {
	r := rand.New(rand.NewSource(3))
	src := make([]byte, BlockSize)
	for i := range src {
		src[i] = byte(i % 97)
	}
	_ = r
	enc := NewEncoder(0)
	dst := make([]byte, OutputSize)
	for i := 0; i < b.N; i++ {
		if _, err := enc.EncodeBlock(dst, src); err != nil {
			b.Fatal(err)
		}
	}
}
