// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flate

// huffmanDecoder is a table-driven canonical Huffman decoder. Entries are
// packed into a single uint32: the low huffmanCountBits bits hold the
// codeword's bit length (0 means "no such codeword"), the rest hold the
// decoded symbol. Codes longer than huffmanChunkBits spill into a
// per-prefix link subtable.
type huffmanDecoder struct {
	chunks   [huffmanNumChunks]uint32
	links    [][]uint32
	linkMask uint32
	linkBits uint
}

const (
	huffmanChunkBits  = 9
	huffmanNumChunks  = 1 << huffmanChunkBits
	huffmanCountBits  = 5
	huffmanCountMask  = (1 << huffmanCountBits) - 1
	huffmanValueShift = huffmanCountBits
)

// init builds the table for the given per-symbol code lengths (0 for an
// unused symbol), deriving the same canonical codewords the encoder would
// assign from the identical length set. It reports false if the length
// set is not a legal canonical Huffman code (over- or under-subscribed),
// except that an empty set and a single codeword are accepted.
func (h *huffmanDecoder) init(lengths []int) bool {
	h.links = nil
	h.linkMask = 0
	for i := range h.chunks {
		h.chunks[i] = 0
	}

	var count [maxCodeLen + 1]int
	maxLen := 0
	used := 0
	for _, n := range lengths {
		if n == 0 {
			continue
		}
		if n > maxCodeLen {
			return false
		}
		count[n]++
		used++
		if n > maxLen {
			maxLen = n
		}
	}
	if used == 0 {
		return true // empty alphabet; any decode attempt will fail via count==0
	}

	// Verify the Kraft equality holds exactly (reject over/under-subscribed
	// length sets), except for the single-codeword special case: some
	// DEFLATE encoders emit a degenerate one-symbol alphabet, so accept
	// it and fill only the codeword's own half of the table, matching
	// the single-symbol leaf buildHuffmanCode produces.
	if used > 1 {
		sum := 0
		for n := 1; n <= maxLen; n++ {
			sum += count[n] << uint(maxLen-n)
		}
		if sum != 1<<uint(maxLen) {
			return false
		}
	}

	codes := make([]uint32, len(lengths))
	assignCanonicalCodes(lengths, codes)

	if maxLen <= huffmanChunkBits {
		for sym, l := range lengths {
			if l == 0 {
				continue
			}
			h.fillChunks(codes[sym], l, uint32(sym), huffmanChunkBits)
		}
		return true
	}

	// Codes longer than the main table width need link subtables, one per
	// distinct low-huffmanChunkBits prefix that some long code shares.
	linkBits := maxLen - huffmanChunkBits
	h.linkBits = uint(linkBits)
	h.linkMask = uint32(1<<uint(linkBits)) - 1
	h.links = make([][]uint32, huffmanNumChunks)

	// linkMarker is a chunk entry whose count exceeds huffmanChunkBits,
	// telling decodeSymbol to consume the main table's bits and continue
	// into the prefix's link subtable. No codeword with length <=
	// huffmanChunkBits can share this prefix (codes are prefix-free), so
	// the marker can never be shadowed by a short code's fill.
	const linkMarker = uint32(huffmanChunkBits + 1)

	for sym, l := range lengths {
		if l == 0 || l <= huffmanChunkBits {
			continue
		}
		prefix := codes[sym] & (huffmanNumChunks - 1)
		if h.links[prefix] == nil {
			h.links[prefix] = make([]uint32, 1<<uint(linkBits))
			h.chunks[prefix] = linkMarker
		}
	}
	for sym, l := range lengths {
		if l == 0 {
			continue
		}
		if l <= huffmanChunkBits {
			h.fillChunks(codes[sym], l, uint32(sym), huffmanChunkBits)
			continue
		}
		prefix := codes[sym] & (huffmanNumChunks - 1)
		rest := codes[sym] >> huffmanChunkBits
		restBits := l - huffmanChunkBits
		fillLinkTable(h.links[prefix], rest, restBits, uint32(sym), linkBits)
	}
	return true
}

// fillChunks replicates one codeword's table entry across every chunk
// index that shares its low n bits, since the remaining high bits of the
// peeked value are "don't care" until more of the codeword is known.
func (h *huffmanDecoder) fillChunks(code uint32, n int, sym uint32, tableBits int) {
	entry := sym<<huffmanValueShift | uint32(n)
	step := uint32(1) << uint(n)
	for idx := code; idx < uint32(1)<<uint(tableBits); idx += step {
		h.chunks[idx] = entry
	}
}

func fillLinkTable(table []uint32, code uint32, n int, sym uint32, tableBits int) {
	entry := sym<<huffmanValueShift | uint32(n)
	step := uint32(1) << uint(n)
	for idx := code; idx < uint32(1)<<uint(tableBits); idx += step {
		table[idx] = entry
	}
}

// decodeSymbol consumes one codeword from r and returns its symbol. ok is
// false if the bits read matched no codeword (a corrupt or truncated
// stream), which the caller turns into a decode error.
func (h *huffmanDecoder) decodeSymbol(r *bitReader) (sym int, ok bool) {
	r.needBits(maxCodeLen)
	peeked := r.peek(huffmanChunkBits)
	entry := h.chunks[peeked]
	n := entry & huffmanCountMask
	if n == 0 {
		return 0, false
	}
	if int(n) <= huffmanChunkBits {
		r.consume(uint(n))
		return int(entry >> huffmanValueShift), true
	}

	link := h.links[peeked]
	if link == nil {
		return 0, false
	}
	r.consume(huffmanChunkBits)
	idx := r.peek(h.linkBits) & h.linkMask
	entry = link[idx]
	n = entry & huffmanCountMask
	if n == 0 {
		return 0, false
	}
	r.consume(uint(n))
	return int(entry >> huffmanValueShift), true
}
