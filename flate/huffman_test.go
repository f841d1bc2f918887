package flate

import (
	"math/rand/v2"
	"testing"
)

func TestHuffmanCodeRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	freq := make([]uint32, numLitLenSyms)
	for i := range freq {
		if r.IntN(3) != 0 {
			freq[i] = uint32(1 + r.IntN(1000))
		}
	}

	lengths, codes := buildHuffmanCode(freq, maxCodeLen)

	var dec huffmanDecoder
	if !dec.init(lengths) {
		t.Fatal("decoder rejected a code this package built")
	}

	var bw bitWriter
	var want []int
	for sym, l := range lengths {
		if l == 0 {
			continue
		}
		bw.addBits(codes[sym], uint(l))
		want = append(want, sym)
	}
	bw.finish()

	var br bitReader
	br.init(bw.out)
	for _, sym := range want {
		got, ok := dec.decodeSymbol(&br)
		if !ok {
			t.Fatalf("decodeSymbol failed, want %d", sym)
		}
		if got != sym {
			t.Fatalf("decodeSymbol = %d, want %d", got, sym)
		}
	}
}

func TestHuffmanCodeSingleSymbol(t *testing.T) {
	freq := make([]uint32, 8)
	freq[3] = 5
	lengths, codes := buildHuffmanCode(freq, maxCodeLen)
	if lengths[3] != 1 || codes[3] != 0 {
		t.Fatalf("single-symbol code = length %d code %d, want length 1 code 0", lengths[3], codes[3])
	}

	var dec huffmanDecoder
	if !dec.init(lengths) {
		t.Fatal("decoder rejected single-symbol code")
	}
	var bw bitWriter
	bw.addBits(0, 1)
	bw.finish()
	var br bitReader
	br.init(bw.out)
	sym, ok := dec.decodeSymbol(&br)
	if !ok || sym != 3 {
		t.Fatalf("decodeSymbol = %d, %v, want 3, true", sym, ok)
	}
}

func TestHuffmanCodeRespectsMaxLen(t *testing.T) {
	// A Fibonacci-weighted frequency table is the classic way to force an
	// unbounded Huffman tree deeper than maxCodeLen.
	freq := make([]uint32, 40)
	a, b := uint32(1), uint32(1)
	for i := range freq {
		freq[i] = a
		a, b = b, a+b
	}
	lengths, _ := buildHuffmanCode(freq, maxCodeLen)
	for sym, l := range lengths {
		if l > maxCodeLen {
			t.Fatalf("symbol %d has length %d, want <= %d", sym, l, maxCodeLen)
		}
	}
	var dec huffmanDecoder
	if !dec.init(lengths) {
		t.Fatal("decoder rejected length-limited code")
	}
}

func TestBitWriterReaderRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(9, 9))
	var bw bitWriter
	var vals []uint32
	var widths []uint

	for i := 0; i < 500; i++ {
		n := uint(1 + r.IntN(24))
		v := uint32(r.Uint64() & ((1 << n) - 1))
		bw.addBits(v, n)
		vals = append(vals, v)
		widths = append(widths, n)
	}
	bw.finish()

	var br bitReader
	br.init(bw.out)
	for i, want := range vals {
		got := br.readBits(widths[i])
		if got != want {
			t.Fatalf("readBits(%d) at index %d = %d, want %d", widths[i], i, got, want)
		}
	}
}
