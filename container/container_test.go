package container

import (
	"bytes"
	"testing"
)

func TestFileHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFileHeader(&buf, 7, 123456789); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != FileHeaderSize {
		t.Fatalf("wrote %d bytes, want %d", buf.Len(), FileHeaderSize)
	}
	nBlocks, size, err := ReadFileHeader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if nBlocks != 7 || size != 123456789 {
		t.Fatalf("got (%d, %d), want (7, 123456789)", nBlocks, size)
	}
}

func TestReadFileHeaderBadMagic(t *testing.T) {
	buf := bytes.NewBuffer(make([]byte, FileHeaderSize))
	if _, _, err := ReadFileHeader(buf); err != ErrBadMagic {
		t.Fatalf("got %v, want ErrBadMagic", err)
	}
}

func TestBlockHeaderRoundTrip(t *testing.T) {
	cases := []struct {
		length uint32
		ext    bool
	}{
		{0, false},
		{1, true},
		{MaxBlockLen, false},
		{MaxBlockLen, true},
		{327680, true},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		if err := WriteBlockHeader(&buf, c.length, c.ext); err != nil {
			t.Fatalf("WriteBlockHeader(%d, %v): %v", c.length, c.ext, err)
		}
		length, ext, err := ReadBlockHeader(&buf)
		if err != nil {
			t.Fatal(err)
		}
		if length != c.length || ext != c.ext {
			t.Fatalf("got (%d, %v), want (%d, %v)", length, ext, c.length, c.ext)
		}
	}
}

func TestWriteBlockHeaderTooLarge(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteBlockHeader(&buf, MaxBlockLen+1, false); err != ErrBlockTooLarge {
		t.Fatalf("got %v, want ErrBlockTooLarge", err)
	}
}
