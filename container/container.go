// Package container implements the TurboSqueeze file wrapper: a "TSQ1"
// file header naming the block count and total uncompressed size, followed
// by that many length-prefixed compressed blocks. It only knows how to
// read and write that framing; the pipeline package drives the actual
// sequence of reads and writes against a live job.
package container

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Magic is the 4-byte marker at the start of every TurboSqueeze container.
const Magic = "TSQ1"

// FileHeaderSize is the number of bytes WriteFileHeader writes and
// ReadFileHeader consumes: 4-byte magic, 4-byte little-endian block count,
// 8-byte little-endian total uncompressed size.
const FileHeaderSize = 4 + 4 + 8

// blockExtFlag is bit 23 of a block's 3-byte length prefix: set when the
// block was encoded with extensions (32/48/64-byte fixed match copies).
const blockExtFlag = 1 << 23

// blockLenMask isolates the 23-bit length field from a block length word.
const blockLenMask = blockExtFlag - 1

// MaxBlockLen is the largest compressed block length the 23-bit length
// field can represent.
const MaxBlockLen = blockLenMask

// ErrBadMagic is returned by ReadFileHeader when the stream does not start
// with Magic.
var ErrBadMagic = errors.New("container: bad magic")

// ErrBlockTooLarge is returned by WriteBlockHeader when length exceeds
// MaxBlockLen.
var ErrBlockTooLarge = errors.New("container: compressed block length exceeds the container's 23-bit length field")

// WriteFileHeader writes the container's fixed-size leading header.
func WriteFileHeader(w io.Writer, numBlocks uint32, totalSize uint64) error {
	var buf [FileHeaderSize]byte
	copy(buf[0:4], Magic)
	binary.LittleEndian.PutUint32(buf[4:8], numBlocks)
	binary.LittleEndian.PutUint64(buf[8:16], totalSize)
	_, err := w.Write(buf[:])
	return errors.Wrap(err, "container: write file header")
}

// ReadFileHeader reads and validates the container's fixed-size leading
// header.
func ReadFileHeader(r io.Reader) (numBlocks uint32, totalSize uint64, err error) {
	var buf [FileHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, 0, errors.Wrap(err, "container: read file header")
	}
	if string(buf[0:4]) != Magic {
		return 0, 0, ErrBadMagic
	}
	numBlocks = binary.LittleEndian.Uint32(buf[4:8])
	totalSize = binary.LittleEndian.Uint64(buf[8:16])
	return numBlocks, totalSize, nil
}

// WriteBlockHeader writes one block's 3-byte little-endian length prefix,
// with bit 23 set when ext is true.
func WriteBlockHeader(w io.Writer, length uint32, ext bool) error {
	if length > MaxBlockLen {
		return ErrBlockTooLarge
	}
	word := length
	if ext {
		word |= blockExtFlag
	}
	buf := [3]byte{byte(word), byte(word >> 8), byte(word >> 16)}
	_, err := w.Write(buf[:])
	return errors.Wrap(err, "container: write block header")
}

// ReadBlockHeader reads one block's 3-byte length prefix and extension flag.
func ReadBlockHeader(r io.Reader) (length uint32, ext bool, err error) {
	var buf [3]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, false, errors.Wrap(err, "container: read block header")
	}
	word := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16
	return word & blockLenMask, word&blockExtFlag != 0, nil
}
