package flate

import (
	"bytes"
	"errors"
	"testing"
)

// TestStoredBlockRoundTrip decodes a hand-assembled stored block
// (BFINAL=1 BTYPE=00, LEN=3, NLEN=^3, "abc") and then checks that
// flipping one bit of NLEN turns the same stream into an error.
func TestStoredBlockRoundTrip(t *testing.T) {
	stream := []byte{
		0x01,       // BFINAL=1, BTYPE=00, padding to byte boundary
		0x03, 0x00, // LEN = 3
		0xfc, 0xff, // NLEN = ^3
		'a', 'b', 'c',
	}
	got, err := Decompress(stream)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, []byte("abc")) {
		t.Fatalf("got %q, want abc", got)
	}

	bad := append([]byte(nil), stream...)
	bad[3] ^= 0x01 // corrupt NLEN
	if _, err := Decompress(bad); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("corrupted NLEN: err = %v, want ErrCorrupt", err)
	}
}

// TestMalformedPrecodeRejected builds a dynamic block whose 19 precode
// lengths are all zero, an under-subscribed (empty) precode that cannot
// describe the litlen/offset length tables that must follow.
func TestMalformedPrecodeRejected(t *testing.T) {
	var bw bitWriter
	bw.addBits(1, 1) // BFINAL
	bw.addBits(2, 2) // BTYPE = dynamic
	bw.addBits(0, 5) // HLIT
	bw.addBits(0, 5) // HDIST
	bw.addBits(0, 4) // HCLEN: 4 precode lengths follow
	for i := 0; i < 4; i++ {
		bw.addBits(0, 3)
	}
	bw.finish()

	out, err := Decompress(bw.out)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
	if len(out) != 0 {
		t.Fatalf("decoder produced %d bytes from a malformed block", len(out))
	}
}

// TestReservedBlockTypeRejected checks BTYPE=11.
func TestReservedBlockTypeRejected(t *testing.T) {
	var bw bitWriter
	bw.addBits(1, 1)
	bw.addBits(3, 2)
	bw.finish()
	if _, err := Decompress(bw.out); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
}

// TestOffsetBeforeStartRejected assembles a static block whose first token
// is a back-reference, which necessarily points before the start of the
// output.
func TestOffsetBeforeStartRejected(t *testing.T) {
	var litCodes [numFixedLitLenSyms]uint32
	assignCanonicalCodes(fixedLitLenLengths[:], litCodes[:])
	var offCodes [numOffsetSyms]uint32
	assignCanonicalCodes(fixedOffsetLengths[:], offCodes[:])

	var bw bitWriter
	bw.addBits(1, 1) // BFINAL
	bw.addBits(1, 2) // BTYPE = static
	// Length symbol 257 (length 3), then offset symbol 0 (offset 1), with
	// zero bytes of output written so far.
	bw.addBits(litCodes[257], uint(fixedLitLenLengths[257]))
	bw.addBits(offCodes[0], uint(fixedOffsetLengths[0]))
	bw.addBits(litCodes[endBlockMarker], uint(fixedLitLenLengths[endBlockMarker]))
	bw.finish()

	if _, err := Decompress(bw.out); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
}

// TestTruncatedInputFails feeds the decoder the front half of a valid
// stream. The property under test is bounded termination: the decoder
// must not keep decoding its own injected zero padding forever. Almost
// every truncation point also yields an error; a rare one can hit bits
// that happen to spell a valid end-of-block, which is only detectable by
// a wrapper checksum, so short-but-clean output is tolerated.
func TestTruncatedInputFails(t *testing.T) {
	data := bytes.Repeat([]byte("abcdefgh"), 4000)
	compressed := Compress(data, 6)
	for _, cut := range []int{1, 2, len(compressed) / 2, len(compressed) - 1} {
		out, err := Decompress(compressed[:cut])
		if err == nil && bytes.Equal(out, data) {
			t.Fatalf("cut at %d: decoded the full payload from a truncated stream", cut)
		}
	}
}

// TestDecompressPrefixReportsConsumed checks that trailing non-DEFLATE
// bytes (a wrapper trailer, in practice) are left unconsumed.
func TestDecompressPrefixReportsConsumed(t *testing.T) {
	data := []byte("hello, hello, hello world")
	compressed := Compress(data, 6)
	withTrailer := append(append([]byte(nil), compressed...), 0xde, 0xad, 0xbe, 0xef)

	out, consumed, err := DecompressPrefix(withTrailer)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("got %q, want %q", out, data)
	}
	if consumed != len(compressed) {
		t.Fatalf("consumed = %d, want %d", consumed, len(compressed))
	}
}

// TestStaticOnlyStream checks the static-code special case: a stream of
// fixed blocks decodes without any dynamic table build.
func TestStaticOnlyStream(t *testing.T) {
	var litCodes [numFixedLitLenSyms]uint32
	assignCanonicalCodes(fixedLitLenLengths[:], litCodes[:])

	var bw bitWriter
	for i, final := range []uint32{0, 1} {
		bw.addBits(final, 1)
		bw.addBits(1, 2)
		for _, b := range []byte("block") {
			bw.addBits(litCodes[b], uint(fixedLitLenLengths[b]))
		}
		bw.addBits(litCodes[byte('0'+i)], uint(fixedLitLenLengths[byte('0'+i)]))
		bw.addBits(litCodes[endBlockMarker], uint(fixedLitLenLengths[endBlockMarker]))
	}
	bw.finish()

	got, err := Decompress(bw.out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "block0block1" {
		t.Fatalf("got %q, want block0block1", got)
	}
}
