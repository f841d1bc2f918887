package flate

import "math/bits"

// parseLazy1 and parseLazy2 are the one- and two-position-lookahead lazy
// strategies used by the middle compression levels.
func parseLazy1(cfg levelConfig, data []byte) []token { return parseLazy(cfg, data, 1) }
func parseLazy2(cfg levelConfig, data []byte) []token { return parseLazy(cfg, data, 2) }

// preferNext weighs a match starting lookahead positions past the
// current one against the match in hand: four points per byte of extra
// length, plus the difference in offset magnitudes (log2), must clear
// the threshold. A later match has to pay for the literals emitted to
// reach it, hence the higher bar at two positions out.
func preferNext(cur, next match, threshold int) bool {
	gain := 4*(next.length-cur.length) +
		bits.Len32(uint32(cur.offset)) - bits.Len32(uint32(next.offset))
	return gain > threshold
}

// parseLazy commits to a match only after checking whether a better one
// starts within the next lookahead positions; if so it emits a literal
// and reconsiders from the next position.
func parseLazy(cfg levelConfig, data []byte, lookahead int) []token {
	mf := newMatchFinder(data, cfg.maxChainLen)
	var toks []token
	i := 0
	for i < len(data) {
		m, ok := mf.find(i, minMatchLength-1)
		mf.insert(i)
		if !ok {
			toks = append(toks, literalToken(data[i]))
			i++
			continue
		}

		deferMatch := false
		if i+1 < len(data) {
			if m1, ok1 := mf.find(i+1, minMatchLength-1); ok1 && preferNext(m, m1, 2) {
				deferMatch = true
			}
		}
		if !deferMatch && lookahead >= 2 && i+2 < len(data) {
			if m2, ok2 := mf.find(i+2, minMatchLength-1); ok2 && preferNext(m, m2, 6) {
				deferMatch = true
			}
		}
		if deferMatch {
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
