// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package flate

import "sort"

// buildHuffmanCode turns a per-symbol frequency table into per-symbol
// code lengths (0 for unused symbols) and per-symbol bit-reversed DEFLATE
// codewords, with lengths capped at maxLen.
//
// The tree is built the ordinary way: repeatedly combine the two
// lowest-frequency active nodes. Length limiting fixes the
// count-per-length vector to satisfy the Kraft equality, then hands the
// shortest available lengths to the most frequent symbols. That is
// slightly suboptimal next to a full package-merge construction but
// always yields a legal DEFLATE code.
func buildHuffmanCode(freq []uint32, maxLen int) (lengths []int, codes []uint32) {
	n := len(freq)
	lengths = make([]int, n)
	codes = make([]uint32, n)

	used := make([]int, 0, n)
	for i, f := range freq {
		if f > 0 {
			used = append(used, i)
		}
	}

	switch len(used) {
	case 0:
		return lengths, codes
	case 1:
		lengths[used[0]] = 1
		codes[used[0]] = 0
		return lengths, codes
	}

	depths := huffmanTreeDepths(freq, used)
	limitCodeLengths(depths, used, maxLen)
	for _, i := range used {
		lengths[i] = depths[i]
	}
	assignCanonicalCodes(lengths, codes)
	return lengths, codes
}

// huffmanTreeDepths builds an ordinary (unbounded-depth) Huffman tree over
// the used symbols and returns each symbol's leaf depth.
func huffmanTreeDepths(freq []uint32, used []int) []int {
	type node struct {
		weight      uint64
		left, right int // node index, or -1 for a leaf
		sym         int // valid only when left < 0
	}

	nodes := make([]node, len(used))
	for i, sym := range used {
		nodes[i] = node{weight: uint64(freq[sym]), left: -1, right: -1, sym: sym}
	}

	active := make([]int, len(nodes))
	for i := range active {
		active[i] = i
	}

	for len(active) > 1 {
		// Find the two lowest-weight active nodes; break ties on the
		// lower original symbol/creation order so the same input always
		// yields the same code.
		a, b := 0, 1
		if nodes[active[b]].weight < nodes[active[a]].weight {
			a, b = b, a
		}
		for i := 2; i < len(active); i++ {
			w := nodes[active[i]].weight
			if w < nodes[active[a]].weight {
				a, b = i, a
			} else if w < nodes[active[b]].weight {
				b = i
			}
		}
		if a > b {
			a, b = b, a
		}

		left, right := active[a], active[b]
		parent := node{weight: nodes[left].weight + nodes[right].weight, left: left, right: right}
		nodes = append(nodes, parent)
		parentIdx := len(nodes) - 1

		// Remove b (the higher index) and put the parent in a's slot.
		active = append(active[:b], active[b+1:]...)
		active[a] = parentIdx
	}

	depths := make([]int, 0)
	maxSym := 0
	for _, s := range used {
		if s > maxSym {
			maxSym = s
		}
	}
	depths = make([]int, maxSym+1)

	var walk func(idx, depth int)
	walk = func(idx, depth int) {
		nd := &nodes[idx]
		if nd.left < 0 {
			depths[nd.sym] = depth
			return
		}
		walk(nd.left, depth+1)
		walk(nd.right, depth+1)
	}
	walk(active[0], 0)
	return depths
}

// limitCodeLengths clamps depths so none exceed maxLen while keeping the
// length multiset a legal (Kraft-complete) canonical Huffman code, then
// reassigns the fixed-up lengths to symbols in frequency order (the most
// frequent symbols get the shortest available lengths).
func limitCodeLengths(depths []int, used []int, maxLen int) {
	overLimit := false
	for _, s := range used {
		if depths[s] > maxLen {
			overLimit = true
			break
		}
	}
	if !overLimit {
		return
	}

	countPerLen := make([]int, maxLen+2) // index 0 unused; maxLen+1 catches overflow before folding
	for _, s := range used {
		l := depths[s]
		if l > maxLen {
			l = maxLen
		}
		countPerLen[l]++
	}

	// Kraft-sum fixup: borrow a slot from a shorter length to legalize a
	// too-full maxLen bucket, repeating until the codespace exactly fills.
	for {
		total := uint64(0)
		for l := 1; l <= maxLen; l++ {
			total += uint64(countPerLen[l]) << uint(maxLen-l)
		}
		full := uint64(1) << uint(maxLen)
		if total <= full {
			// Under-full only happens when every symbol already fit; pad
			// is unreachable here since countPerLen already sums to
			// len(used) leaves of an honest tree, but guard anyway.
			break
		}
		countPerLen[maxLen]--
		for l := maxLen - 1; l >= 1; l-- {
			if countPerLen[l] > 0 {
				countPerLen[l]--
				countPerLen[l+1] += 2
				break
			}
		}
	}

	// Re-assign: most frequent symbols get the shortest lengths.
	order := make([]int, len(used))
	copy(order, used)
	sort.Slice(order, func(i, j int) bool {
		return depths[order[i]] < depths[order[j]] // stable-ish proxy for frequency via original depth
	})

	l := 1
	for _, s := range order {
		for countPerLen[l] == 0 {
			l++
		}
		depths[s] = l
		countPerLen[l]--
	}
}

// assignCanonicalCodes assigns DEFLATE codewords given final lengths, in
// (length ascending, symbol ascending) order, then bit-reverses each
// codeword so both encoder and decoder can work with the raw LSB-first
// bits and never reverse per step.
func assignCanonicalCodes(lengths []int, codes []uint32) {
	var blCount [maxCodeLen + 1]int
	for _, l := range lengths {
		if l > 0 {
			blCount[l]++
		}
	}

	var nextCode [maxCodeLen + 1]uint32
	code := uint32(0)
	for bits := 1; bits <= maxCodeLen; bits++ {
		code = (code + uint32(blCount[bits-1])) << 1
		nextCode[bits] = code
	}

	for sym, l := range lengths {
		if l == 0 {
			continue
		}
		codes[sym] = reverseBits(nextCode[l], uint(l))
		nextCode[l]++
	}
}
