package block

// DecodeBlock decompresses src into dst and returns the number of bytes
// written. dst must be large enough to hold BlockSize bytes plus the
// fast-phase overshoot (OutputSize covers this). src should be backed by a
// buffer with similar slack; the fast phase reads up to 16 bytes past a
// literal's declared length. The dangling final size byte a fully
// pair-aligned block leaves behind is never read (see encodeState.pad in
// encoder.go and the size checks in decodeOctets).
//
// ext selects whether match size codes 0/1/2 mean fixed 32/48/64-byte
// copies; it must match whatever the block was encoded with, which the
// container layer carries alongside the block rather than inside it.
func DecodeBlock(dst, src []byte, ext bool) (int, error) {
	if len(src) < headerSize {
		return 0, ErrMalformedBlock
	}
	size := int(getUint24LE(src))
	if size > BlockSize {
		return 0, ErrMalformedBlock
	}
	if size == 0 {
		return 0, nil
	}

	fastLimit := 0
	if size > 512 {
		fastLimit = size - 256
	}

	i, j := headerSize, 0
	i, j = decodeOctets(dst, src, i, j, fastLimit, size, ext, true)
	decodeOctets(dst, src, i, j, size, size, ext, false)
	return size, nil
}

// decodeOctets processes whole octets (one control byte, four pairs) until
// j reaches limit, never processing a pair once j has already reached size
// (so padding elements are never read). fast selects the overshoot-tolerant
// 16-byte copy for every element; the safe pass instead copies exactly as
// many bytes as declared, and takes over once fewer than 256 bytes of the
// declared size remain (DecodeBlock's fastLimit).
func decodeOctets(dst, src []byte, i, j, limit, size int, ext, fast bool) (int, int) {
	for j < limit {
		controlByte := src[i]
		i++
		mask := uint8(128)

		for pair := 0; pair < 4; pair++ {
			if j >= size {
				return i, j
			}
			sizeByte := src[i]
			i++
			base := j

			i, j = decodeElement(dst, src, i, j, base, sizeByte>>4, controlByte&mask != 0, ext, fast)
			mask >>= 1

			if j >= size {
				return i, j
			}
			i, j = decodeElement(dst, src, i, j, base, sizeByte&15, controlByte&mask != 0, ext, fast)
			mask >>= 1
		}
	}
	return i, j
}

// decodeElement decodes one literal or match element. code is the raw
// 4-bit nibble (0-15); base is the output position captured at the start
// of this element's pair, shared by both elements of the pair.
func decodeElement(dst, src []byte, i, j, base int, code uint8, literal, ext, fast bool) (int, int) {
	if literal {
		sz := int(code) + 1
		if fast {
			copy16(dst[j:], src[i:])
		} else {
			copy(dst[j:j+sz], src[i:i+sz])
		}
		return i + sz, j + sz
	}

	offset := int(getUint16LE(src[i:]))
	i += 2
	pos := base - offset

	if ext {
		switch code {
		case extCopyCode32:
			copyFixed(dst, j, pos, extCopyLen32, fast)
			return i, j + extCopyLen32
		case extCopyCode48:
			copyFixed(dst, j, pos, extCopyLen48, fast)
			return i, j + extCopyLen48
		case extCopyCode64:
			copyFixed(dst, j, pos, extCopyLen64, fast)
			return i, j + extCopyLen64
		}
	}

	sz := int(code) + 1
	copyFixed(dst, j, pos, sz, fast)
	return i, j + sz
}

// copyFixed copies sz bytes within dst from pos to j. In the fast phase it
// always issues a 16-byte (or wider, for extension codes) copy regardless
// of sz, relying on the destination buffer's overshoot slack; the safe
// phase copies exactly sz bytes.
func copyFixed(dst []byte, j, pos, sz int, fast bool) {
	if !fast {
		copy(dst[j:j+sz], dst[pos:pos+sz])
		return
	}
	switch {
	case sz > 48:
		copy64(dst[j:], dst[pos:])
	case sz > 32:
		copy48(dst[j:], dst[pos:])
	case sz > 16:
		copy32(dst[j:], dst[pos:])
	default:
		copy16(dst[j:], dst[pos:])
	}
}

func copy16(dst, src []byte) { copy(dst[:16], src[:16]) }
func copy32(dst, src []byte) { copy(dst[:32], src[:32]) }
func copy48(dst, src []byte) { copy(dst[:48], src[:48]) }
func copy64(dst, src []byte) { copy(dst[:64], src[:64]) }
