package block

import "encoding/binary"

// Encoder turns one uncompressed block into one compressed block. It is not
// safe for concurrent use: each pipeline worker owns its own Encoder so its
// match-finder table is never shared across goroutines.
type Encoder struct {
	level int
	ext   bool
	table *hashTable
}

// NewEncoder builds an Encoder at the given compression level. Level 0 and 1
// both use a single-slot hash table (1 behaves like 0 but the caller may
// still distinguish them for effort/calling-convention reasons); level 2
// through 10 keep 2^level candidate positions per hash bucket.
func NewEncoder(level int) *Encoder {
	if level < 0 {
		level = 0
	}
	return &Encoder{level: level, table: newHashTable(level)}
}

// Level reports the compression level this Encoder was built with.
func (e *Encoder) Level() int { return e.level }

// SetExtensions toggles the 32/48/64-byte fixed-width match codes. It must
// not be called between EncodeBlock and the matching DecodeBlock call for
// the same block — the flag is carried in the container layer, not the
// block itself.
func (e *Encoder) SetExtensions(ext bool) { e.ext = ext }

func (e *Encoder) prefixCap() int {
	if e.ext {
		return maxRawPrefix
	}
	return MaxMatchLen
}

// EncodeBlock compresses src into dst, returning the number of bytes
// written. dst must have length at least OutputSize; src must have length
// at most BlockSize.
func (e *Encoder) EncodeBlock(dst, src []byte) (int, error) {
	size := len(src)
	if size > BlockSize {
		return 0, ErrBlockTooLarge
	}
	if len(dst) < OutputSize {
		panic("block: dst shorter than OutputSize")
	}

	e.table.Reset()
	putUint24LE(dst, uint32(size))

	st := &encodeState{dst: dst, j: headerSize, capLen: e.prefixCap()}
	st.lastControl = st.j
	dst[st.j] = 0
	st.j++
	st.lastSize = st.j
	dst[st.j] = 0
	st.j++

	i := 0
	for i < size {
		lastI := i
		for {
			if i+4 > size {
				i = size
				break
			}
			i++
			if i+4 > size {
				i = size
				break
			}
			word := binary.LittleEndian.Uint32(src[i:])
			pos, k, ok := e.table.best(src, i, word, st.capLen)
			if i-lastI > 31 {
				lastI = st.flushLiterals(src, lastI, i)
			}
			if ok && k >= MinMatchLen {
				offset := st.base - pos
				if offset >= MinOffset && offset <= MaxOffset {
					break
				}
			}
			e.table.insert(word, i)
		}
		st.flushLiterals(src, lastI, i)
		if i >= size {
			break
		}

		for {
			word := binary.LittleEndian.Uint32(src[i:])
			pos, k, ok := e.table.best(src, i, word, st.capLen)
			if !ok {
				break
			}
			if avail := st.base - pos; k > avail {
				k = avail
			}
			if k < MinMatchLen {
				break
			}
			offset := st.base - pos
			if offset < MinOffset || offset > MaxOffset {
				break
			}

			code := matchLenCode[k]
			length := decodedMatchLen(code, e.ext)

			putUint16LE(dst[st.j:], uint32(offset))
			st.j += 2
			e.table.insert(word, i)
			i += length

			st.emitElement(0, code, i)

			if i+4 > size {
				break
			}
		}
	}

	st.pad()
	return st.j, nil
}

// decodedMatchLen returns how many output bytes a match's size-nibble code
// represents. In extensions mode codes 0/1/2 mean a fixed-width copy;
// everywhere else (and always without extensions) it is code+1.
func decodedMatchLen(code uint8, ext bool) int {
	if ext {
		switch code {
		case extCopyCode32:
			return extCopyLen32
		case extCopyCode48:
			return extCopyLen48
		case extCopyCode64:
			return extCopyLen64
		}
	}
	return int(code) + 1
}

// encodeState carries the running bookkeeping the original implementation
// keeps in local variables across the scan/flush/match loops: the next
// write position, the reserved control and size byte slots currently being
// filled, the element count, and base (the output position as of the last
// completed pair — matches must not reference data at or after it).
type encodeState struct {
	dst         []byte
	j           int
	lastControl int
	lastSize    int
	base        int
	nSym        uint32
	capLen      int
}

// flushLiterals copies src[from:to] into the output in chunks of up to
// MaxLiteralRun bytes, each one a literal element, and returns to (the new
// "already emitted" cursor).
func (st *encodeState) flushLiterals(src []byte, from, to int) int {
	for to-from > 0 {
		n := to - from
		if n > MaxLiteralRun {
			n = MaxLiteralRun
		}
		copy(st.dst[st.j:], src[from:from+n])
		st.j += n
		from += n
		st.emitElement(1, uint8(n-1), from)
	}
	return from
}

// emitElement records one element (literal bit + size code) into the
// reserved control/size bytes, rolling over to freshly reserved bytes when
// the current octet or pair completes. posAfter is the total input/output
// position reached once this element is accounted for; it becomes the new
// base exactly when it completes a pair.
func (st *encodeState) emitElement(literalBit uint8, code uint8, posAfter int) {
	st.nSym++
	st.dst[st.lastControl] = st.dst[st.lastControl]<<1 | literalBit
	if st.nSym&7 == 0 {
		st.lastControl = st.j
		st.dst[st.j] = 0
		st.j++
	}
	st.dst[st.lastSize] = st.dst[st.lastSize]<<4 | code
	if st.nSym&1 == 0 {
		st.lastSize = st.j
		st.dst[st.j] = 0
		st.j++
		st.base = posAfter
	}
}

// pad completes the final, possibly partial octet's control byte shifts (so
// its real bits land in their final most-significant-bit-first position)
// and, if a pair was left straddling real and padding elements, finishes
// that one size-byte shift too. It writes no further control/size bytes and
// no payload: the decoder stops consuming elements once it has produced the
// declared size, so padding elements are never read back.
func (st *encodeState) pad() {
	sizeDone := false
	for st.nSym&7 != 0 {
		st.dst[st.lastControl] = st.dst[st.lastControl]<<1 | 1
		if !sizeDone && st.nSym&1 != 0 {
			st.dst[st.lastSize] <<= 4
			sizeDone = true
		}
		st.nSym++
	}
}
