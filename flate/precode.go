// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package flate

// precodeItem is one emitted precode symbol, with any trailing extra
// bits a repeat code (16/17/18) carries (RFC 1951 §3.2.7).
type precodeItem struct {
	sym       int
	extra     uint32
	extraBits uint
}

// buildPrecodeSequence run-length-encodes the concatenation of a
// dynamic block's litlen and offset code-length tables into the 19-symbol
// precode alphabet, and tallies symbol frequencies for building the
// precode's own Huffman code.
func buildPrecodeSequence(litlenLengths, offsetLengths []int) ([]precodeItem, [numPrecodeSyms]uint32) {
	hlit := trimmedCount(litlenLengths, 257)
	hdist := trimmedCount(offsetLengths, 1)

	all := make([]int, 0, hlit+hdist)
	all = append(all, litlenLengths[:hlit]...)
	all = append(all, offsetLengths[:hdist]...)

	var freq [numPrecodeSyms]uint32
	var seq []precodeItem

	emit := func(sym int, extra uint32, extraBits uint) {
		seq = append(seq, precodeItem{sym: sym, extra: extra, extraBits: extraBits})
		freq[sym]++
	}

	i := 0
	for i < len(all) {
		l := all[i]
		runLen := 1
		for i+runLen < len(all) && all[i+runLen] == l {
			runLen++
		}
		total := runLen

		if l == 0 {
			for runLen > 0 {
				switch {
				case runLen >= 11:
					n := runLen
					if n > 138 {
						n = 138
					}
					emit(18, uint32(n-11), 7)
					runLen -= n
				case runLen >= 3:
					n := runLen
					if n > 10 {
						n = 10
					}
					emit(17, uint32(n-3), 3)
					runLen -= n
				default:
					emit(0, 0, 0)
					runLen--
				}
			}
		} else {
			emit(l, 0, 0)
			runLen--
			for runLen > 0 {
				n := runLen
				if n > 6 {
					n = 6
				}
				if n < 3 {
					for ; n > 0; n-- {
						emit(l, 0, 0)
					}
					break
				}
				emit(16, uint32(n-3), 2)
				runLen -= n
			}
		}
		i += total
	}
	return seq, freq
}
