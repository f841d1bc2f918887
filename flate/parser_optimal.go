package flate

// parseOptimal is the near-optimal strategy used by the top compression
// levels. It works in chunks of up to softMaxBlockLength positions:
//
//  1. The binary-tree matchfinder fills a per-position cache of every
//     candidate match (ascending lengths, one offset per length).
//  2. A cost model assigns each literal, length slot, and offset slot a
//     fractional bit price (bitCost units per bit), seeded from the
//     static code and the chunk's literal-vs-match balance, and blended
//     with the previous chunk's final model so statistics carry forward.
//  3. A backward minimum-cost-path pass picks, at every position, the
//     cheaper of a literal or any cached (length, offset) continuation.
//  4. The chosen items are tallied into real Huffman code lengths, the
//     model is rebuilt from those, and the pass repeats; the last pass's
//     choices become the token stream.
func parseOptimal(cfg levelConfig, data []byte) []token {
	n := len(data)
	if n == 0 {
		return nil
	}
	bt := newBTMatchFinder(data, cfg.depth, cfg.niceLen)

	var (
		toks   []token
		cache  matchCache
		cost   []uint32
		choice []optimum
		model  costModel
		prev   *costModel
	)

	for base := 0; base < n; {
		chunkEnd := base + softMaxBlockLength
		if chunkEnd > n {
			chunkEnd = n
		}
		m := chunkEnd - base

		cache.reset()
		for i := base; i < chunkEnd; i++ {
			cache.collect(bt, i)
		}

		if cap(cost) < m+1 {
			cost = make([]uint32, m+1)
			choice = make([]optimum, m)
		}
		cost = cost[:m+1]
		choice = choice[:m]

		model.seed(cache.regime(m), prev)
		for pass := 0; pass < cfg.passes; pass++ {
			runOptimalPass(data, base, m, &cache, &model, cost, choice)
			if pass < cfg.passes-1 {
				model.rebuildFromChoices(data, base, m, choice)
			}
		}

		for i := 0; i < m; {
			it := choice[i]
			if it.length == 0 {
				toks = append(toks, literalToken(data[base+i]))
				i++
			} else {
				toks = append(toks, matchToken(it.length, it.offset))
				i += int(it.length)
			}
		}

		saved := model
		prev = &saved
		base = chunkEnd
	}
	return toks
}

// optimum is one node of the minimum-cost path: the item chosen at a
// position. length 0 means a literal.
type optimum struct {
	length uint32
	offset uint32
}

// matchCache is the per-chunk store of every candidate match, laid out
// as one flat arena with per-position bounds so a chunk costs two
// allocations however many matches it holds.
type matchCache struct {
	arena  []match
	bounds []int32
}

func (c *matchCache) reset() {
	c.arena = c.arena[:0]
	c.bounds = append(c.bounds[:0], 0)
}

func (c *matchCache) collect(bt *btMatchFinder, pos int) {
	c.arena = bt.advance(pos, c.arena)
	c.bounds = append(c.bounds, int32(len(c.arena)))
}

// at returns the cached matches for the i'th position of the chunk, in
// ascending length order.
func (c *matchCache) at(i int) []match {
	return c.arena[c.bounds[i]:c.bounds[i+1]]
}

// regime buckets the chunk by how much of it the matchfinder covered:
// 0 for literal-heavy chunks, 2 for match-heavy ones, 1 between.
func (c *matchCache) regime(m int) int {
	withMatch := 0
	for i := 0; i < m; i++ {
		if c.bounds[i+1] > c.bounds[i] {
			withMatch++
		}
	}
	switch {
	case withMatch*4 < m:
		return 0
	case withMatch*4 > m*3:
		return 2
	default:
		return 1
	}
}

// bitCost is the integer scale for fractional bit prices: a cost of 16
// is one bit. Sub-bit resolution is what lets successive passes settle
// instead of oscillating between two whole-bit interpretations.
const bitCost = 16

// unusedSymbolLen prices a symbol the previous pass never chose. Zero
// would make every unused symbol look free; this charges roughly what a
// rare symbol costs in a real code.
const unusedSymbolLen = 13

// costModel holds the price of each emittable item in bitCost units.
// Length and offset slot entries include the slot's extra bits.
type costModel struct {
	literal    [256]uint32
	lengthSlot [len(lengthBase)]uint32
	offsetSlot [numOffsetSyms]uint32
}

// seed initializes the model for a chunk's first pass from the static
// code's lengths, nudged by the match regime (literals cheaper when
// matches are rare, pricier when they dominate), then blended half and
// half with the previous chunk's final model if there is one.
func (mdl *costModel) seed(regime int, prev *costModel) {
	adjust := [3]int32{-bitCost / 2, 0, bitCost / 2}[regime]
	for i := range mdl.literal {
		mdl.literal[i] = uint32(int32(fixedLitLenLengths[i]*bitCost) + adjust)
	}
	for s := range mdl.lengthSlot {
		mdl.lengthSlot[s] = uint32(int32((fixedLitLenLengths[257+s]+int(lengthExtraBits[s]))*bitCost) - adjust)
	}
	for s := range mdl.offsetSlot {
		mdl.offsetSlot[s] = uint32(int32((5+int(offsetExtraBits[s]))*bitCost) - adjust)
	}
	if prev == nil {
		return
	}
	for i := range mdl.literal {
		mdl.literal[i] = (mdl.literal[i] + prev.literal[i]) / 2
	}
	for s := range mdl.lengthSlot {
		mdl.lengthSlot[s] = (mdl.lengthSlot[s] + prev.lengthSlot[s]) / 2
	}
	for s := range mdl.offsetSlot {
		mdl.offsetSlot[s] = (mdl.offsetSlot[s] + prev.offsetSlot[s]) / 2
	}
}

// rebuildFromChoices replaces the model with the real code lengths the
// previous pass's choices would produce, so the next pass optimizes
// against the code it is actually shaping.
func (mdl *costModel) rebuildFromChoices(data []byte, base, m int, choice []optimum) {
	var litlenFreq [numLitLenSyms]uint32
	var offsetFreq [numOffsetSyms]uint32
	for i := 0; i < m; {
		it := choice[i]
		if it.length == 0 {
			litlenFreq[data[base+i]]++
			i++
			continue
		}
		litlenFreq[257+int(lengthSlotOf(it.length))]++
		offsetFreq[offsetSlotOf(it.offset)]++
		i += int(it.length)
	}
	litlenFreq[endBlockMarker]++

	litLengths, _ := buildHuffmanCode(litlenFreq[:], maxCodeLen)
	offLengths, _ := buildHuffmanCode(offsetFreq[:], maxCodeLen)

	for i := range mdl.literal {
		l := litLengths[i]
		if l == 0 {
			l = unusedSymbolLen
		}
		mdl.literal[i] = uint32(l * bitCost)
	}
	for s := range mdl.lengthSlot {
		l := litLengths[257+s]
		if l == 0 {
			l = unusedSymbolLen
		}
		mdl.lengthSlot[s] = uint32((l + int(lengthExtraBits[s])) * bitCost)
	}
	for s := range mdl.offsetSlot {
		l := offLengths[s]
		if l == 0 {
			l = unusedSymbolLen
		}
		mdl.offsetSlot[s] = uint32((l + int(offsetExtraBits[s])) * bitCost)
	}
}

// runOptimalPass sweeps the chunk right to left computing the cheapest
// cost to reach the end from every position, recording the item that
// achieves it. Each cached match candidate is tried at every length it
// makes newly reachable, so a short match with a cheap offset can beat a
// longer, farther one.
func runOptimalPass(data []byte, base, m int, cache *matchCache, mdl *costModel, cost []uint32, choice []optimum) {
	cost[m] = 0
	for i := m - 1; i >= 0; i-- {
		best := mdl.literal[data[base+i]] + cost[i+1]
		item := optimum{}

		prevLen := minMatchLength - 1
		for _, mt := range cache.at(i) {
			maxL := mt.length
			if i+maxL > m {
				maxL = m - i
			}
			oc := mdl.offsetSlot[offsetSlotOf(uint32(mt.offset))]
			for l := prevLen + 1; l <= maxL; l++ {
				c := oc + mdl.lengthSlot[lengthSlotOf(uint32(l))] + cost[i+l]
				if c < best {
					best = c
					item = optimum{length: uint32(l), offset: uint32(mt.offset)}
				}
			}
			if maxL > prevLen {
				prevLen = maxL
			}
		}

		cost[i] = best
		choice[i] = item
	}
}
