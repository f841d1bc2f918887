// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flate

// Decompress is a one-shot DEFLATE decoder. It treats data as exactly
// one DEFLATE stream with nothing meaningful
// trailing it (the shape a standalone .deflate payload has).
func Decompress(data []byte) (out []byte, err error) {
	out, _, err = DecompressPrefix(data)
	return out, err
}

// DecompressPrefix decodes a single DEFLATE stream occupying a prefix of
// data and reports how many bytes of data that stream occupied, leaving
// any trailing bytes (a gzip or zlib trailer, most commonly) unconsumed
// and unexamined. Internally the decode helpers panic with a corrupt
// value on bad input, unwinding straight to this function's single
// recover site; only an error ever crosses the package boundary.
func DecompressPrefix(data []byte) (out []byte, consumed int, err error) {
	defer func() {
		if r := recover(); r != nil {
			if c, ok := r.(corrupt); ok {
				err = c.err
				out = nil
				consumed = 0
				return
			}
			panic(r)
		}
	}()

	var br bitReader
	br.init(data)
	out = make([]byte, 0, len(data)*3)

	var litlenDec, offsetDec huffmanDecoder
	for {
		final := br.readBits(1)
		btype := br.readBits(2)

		switch btype {
		case 0:
			out = decodeStoredBlock(&br, out)
		case 1:
			litlenDec.init(fixedLitLenLengths[:])
			// The static offset code has 32 five-bit codewords; 30 and 31
			// are reserved and rejected below as invalid offset symbols.
			var offLens [numOffsetSyms + 2]int
			for i := range offLens {
				offLens[i] = 5
			}
			offsetDec.init(offLens[:])
			out = decodeCompressedBlock(&br, &litlenDec, &offsetDec, out)
		case 2:
			litlenLengths, offsetLengths := readDynamicHeader(&br)
			if !litlenDec.init(litlenLengths) || !offsetDec.init(offsetLengths) {
				throwCorrupt("invalid dynamic huffman code")
			}
			out = decodeCompressedBlock(&br, &litlenDec, &offsetDec, out)
		default:
			throwCorrupt("reserved block type 3")
		}

		if final == 1 {
			break
		}
	}

	if !br.overreadValid() {
		throwCorrupt("read past end of stream")
	}
	br.align()
	return out, br.pos, nil
}

func decodeStoredBlock(br *bitReader, out []byte) []byte {
	br.align()
	b0, ok0 := br.readByte()
	b1, ok1 := br.readByte()
	b2, ok2 := br.readByte()
	b3, ok3 := br.readByte()
	if !ok0 || !ok1 || !ok2 || !ok3 {
		throwCorrupt("truncated stored block header")
	}
	n := int(b0) | int(b1)<<8
	nn := int(b2) | int(b3)<<8
	if n != nn^0xFFFF {
		throwCorrupt("stored block length check mismatch")
	}
	for i := 0; i < n; i++ {
		b, ok := br.readByte()
		if !ok {
			throwCorrupt("truncated stored block data")
		}
		out = append(out, b)
	}
	return out
}

func decodeCompressedBlock(br *bitReader, litlenDec, offsetDec *huffmanDecoder, out []byte) []byte {
	for {
		sym, ok := litlenDec.decodeSymbol(br)
		if !ok {
			throwCorrupt("invalid litlen codeword")
		}
		if sym < 256 {
			out = append(out, byte(sym))
			continue
		}
		if sym == endBlockMarker {
			return out
		}

		ls := sym - 257
		if ls < 0 || ls >= len(lengthBase) {
			throwCorrupt("invalid length symbol")
		}
		length := uint32(lengthBase[ls])
		if eb := lengthExtraBits[ls]; eb > 0 {
			length += br.readBits(uint(eb))
		}

		osym, ok := offsetDec.decodeSymbol(br)
		if !ok {
			throwCorrupt("invalid offset codeword")
		}
		if osym < 0 || osym >= len(offsetBase) {
			throwCorrupt("invalid offset symbol")
		}
		offset := offsetBase[osym]
		if eb := offsetExtraBits[osym]; eb > 0 {
			offset += br.readBits(uint(eb))
		}

		if int(offset) > len(out) {
			throwCorrupt("match offset before start of output")
		}
		start := len(out) - int(offset)
		for i := 0; i < int(length); i++ {
			out = append(out, out[start+i])
		}
	}
}

// readDynamicHeader decodes a dynamic block's HLIT/HDIST/HCLEN fields,
// the precode table, and the run-length-encoded litlen/offset length
// sequence it describes (RFC 1951 §3.2.7).
func readDynamicHeader(br *bitReader) (litlenLengths, offsetLengths []int) {
	hlit := int(br.readBits(5)) + 257
	hdist := int(br.readBits(5)) + 1
	hclen := int(br.readBits(4)) + 4

	var precodeLengths [numPrecodeSyms]int
	for i := 0; i < hclen; i++ {
		precodeLengths[codeOrder[i]] = int(br.readBits(3))
	}

	var precodeDec huffmanDecoder
	if !precodeDec.init(precodeLengths[:]) {
		throwCorrupt("invalid precode")
	}

	all := make([]int, hlit+hdist)
	i := 0
	for i < len(all) {
		sym, ok := precodeDec.decodeSymbol(br)
		if !ok {
			throwCorrupt("invalid precode codeword")
		}
		switch {
		case sym < 16:
			all[i] = sym
			i++
		case sym == 16:
			if i == 0 {
				throwCorrupt("repeat code 16 with no previous length")
			}
			n := int(br.readBits(2)) + 3
			if i+n > len(all) {
				throwCorrupt("repeat code 16 overruns length table")
			}
			prev := all[i-1]
			for j := 0; j < n; j++ {
				all[i] = prev
				i++
			}
		case sym == 17:
			n := int(br.readBits(3)) + 3
			if i+n > len(all) {
				throwCorrupt("repeat code 17 overruns length table")
			}
			i += n
		case sym == 18:
			n := int(br.readBits(7)) + 11
			if i+n > len(all) {
				throwCorrupt("repeat code 18 overruns length table")
			}
			i += n
		default:
			throwCorrupt("invalid precode symbol")
		}
	}

	return all[:hlit], all[hlit:]
}
