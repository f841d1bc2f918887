// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flate

// RFC 1951 constants.
const (
	maxCodeLen        = 15 // max bits in a litlen/offset Huffman code
	maxCodeLenPrecode = 7

	numLitLenSyms  = 286 // 0-255 literals, 256 end-of-block, 257-285 lengths
	numOffsetSyms  = 30
	numPrecodeSyms = 19

	// The static code of RFC 1951 §3.2.6 is defined over two extra
	// reserved litlen symbols (286, 287) that participate in code
	// construction but never appear in a valid block.
	numFixedLitLenSyms = 288

	endBlockMarker = 256

	minMatchLength = 3
	maxMatchLength = 258
	maxMatchOffset = 1 << 15 // 32768

	// softMaxBlockLength is the target block length; a block may run a
	// little over to let the final match finish.
	softMaxBlockLength = 300000
	maxBlockLength     = softMaxBlockLength + maxMatchLength
	minBlockLength     = 5000
)

// lengthBase and lengthExtraBits give, for length symbol i (0-based, so
// symbol 257+i), the base match length and the number of extra bits that
// follow the Huffman code to refine it. RFC 1951 §3.2.5.
var lengthBase = [...]uint16{
	3, 4, 5, 6, 7, 8, 9, 10,
	11, 13, 15, 17,
	19, 23, 27, 31,
	35, 43, 51, 59,
	67, 83, 99, 115,
	131, 163, 195, 227,
	258,
}

var lengthExtraBits = [...]uint8{
	0, 0, 0, 0, 0, 0, 0, 0,
	1, 1, 1, 1,
	2, 2, 2, 2,
	3, 3, 3, 3,
	4, 4, 4, 4,
	5, 5, 5, 5,
	0,
}

// offsetBase and offsetExtraBits give, for offset symbol i, the base match
// offset and the number of extra bits that follow. RFC 1951 §3.2.5.
var offsetBase = [...]uint32{
	1, 2, 3, 4,
	5, 7,
	9, 13,
	17, 25,
	33, 49,
	65, 97,
	129, 193,
	257, 385,
	513, 769,
	1025, 1537,
	2049, 3073,
	4097, 6145,
	8193, 12289,
	16385, 24577,
}

var offsetExtraBits = [...]uint8{
	0, 0, 0, 0,
	1, 1,
	2, 2,
	3, 3,
	4, 4,
	5, 5,
	6, 6,
	7, 7,
	8, 8,
	9, 9,
	10, 10,
	11, 11,
	12, 12,
	13, 13,
}

// codeOrder is the order in which precode (run-length) code lengths are
// transmitted in a dynamic block header. RFC 1951 §3.2.7.
var codeOrder = [numPrecodeSyms]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

// fixedLitLenLengths and fixedOffsetLengths define the static Huffman code
// of RFC 1951 §3.2.6.
var fixedLitLenLengths = func() [numFixedLitLenSyms]int {
	var l [numFixedLitLenSyms]int
	for i := 0; i < 144; i++ {
		l[i] = 8
	}
	for i := 144; i < 256; i++ {
		l[i] = 9
	}
	for i := 256; i < 280; i++ {
		l[i] = 7
	}
	for i := 280; i < numFixedLitLenSyms; i++ {
		l[i] = 8
	}
	return l
}()

var fixedOffsetLengths = func() [numOffsetSyms]int {
	var l [numOffsetSyms]int
	for i := range l {
		l[i] = 5
	}
	return l
}()

// offsetSlot maps a match offset (1..32768) to its offset-code symbol
// (0..29) via a condensed two-level lookup: 256 direct entries for
// offsets 1..256, then 256 entries each covering a 128-offset range for
// the rest.
var offsetSlotLo [256]uint8
var offsetSlotHi [256]uint8

func init() {
	sym := 0
	for off := 1; off <= 256; off++ {
		for off > int(offsetBase[sym])+((1<<offsetExtraBits[sym])-1) {
			sym++
		}
		offsetSlotLo[off-1] = uint8(sym)
	}
	sym = 0
	for i := 0; i < 256; i++ {
		off := 257 + i*128
		if off > maxMatchOffset {
			// Entries past the one holding offset 32768 are never looked up.
			off = maxMatchOffset
		}
		for off > int(offsetBase[sym])+((1<<offsetExtraBits[sym])-1) {
			sym++
		}
		offsetSlotHi[i] = uint8(sym)
	}
}

// offsetSlotOf returns the offset-code symbol for a match offset in 1..32768.
func offsetSlotOf(off uint32) uint8 {
	if off <= 256 {
		return offsetSlotLo[off-1]
	}
	return offsetSlotHi[(off-257)>>7]
}

// lengthSlotOf returns the length-code symbol (0-based, add 257 for the
// actual litlen alphabet symbol) for a match length in 3..258.
func lengthSlotOf(length uint32) uint8 {
	// Binary search over the 29 buckets; lengths only range 3..258 so
	// this stays cheap and obviously correct.
	lo, hi := 0, len(lengthBase)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if uint32(lengthBase[mid]) <= length {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return uint8(lo)
}
