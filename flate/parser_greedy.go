package flate

// parseFast is the level-1 strategy: one hash-table probe per position
// with no chain walk, taking whatever match the bucket offers.
func parseFast(cfg levelConfig, data []byte) []token {
	mf := newHTMatchFinder(data)
	var toks []token
	for i := 0; i < len(data); {
		m, ok := mf.findAndInsert(i)
		if !ok {
			toks = append(toks, literalToken(data[i]))
			i++
			continue
		}
		toks = append(toks, matchToken(uint32(m.length), uint32(m.offset)))
		for j := 1; j < m.length; j++ {
			mf.insert(i + j)
		}
		i += m.length
	}
	return toks
}

// parseGreedy takes the longest match the hash-chain matchfinder offers
// at each position (no lookahead), falling back to a literal. Used by
// the low compression levels where matchfinder thoroughness, not parse
// quality, is the lever.
func parseGreedy(cfg levelConfig, data []byte) []token {
	mf := newMatchFinder(data, cfg.maxChainLen)
	var toks []token
	for i := 0; i < len(data); {
		m, ok := mf.find(i, minMatchLength-1)
		if !ok {
			toks = append(toks, literalToken(data[i]))
			mf.insert(i)
			i++
			continue
		}
		toks = append(toks, matchToken(uint32(m.length), uint32(m.offset)))
		for j := 0; j < m.length; j++ {
			mf.insert(i + j)
		}
		i += m.length
	}
	return toks
}
