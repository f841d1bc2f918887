package gzip

import (
	"bytes"
	stdgzip "compress/gzip"
	"io"
	"math/rand/v2"
	"testing"
)

func randomData(n int, seed uint64) []byte {
	r := rand.New(rand.NewPCG(seed, seed))
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(r.Uint32())
	}
	return buf
}

func TestRoundTrip(t *testing.T) {
	data := randomData(30000, 1)
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Header.Name = "test.txt"
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("got %d bytes, want %d", len(got), len(data))
	}
	if r.Name != "test.txt" {
		t.Fatalf("Name = %q, want test.txt", r.Name)
	}
}

func TestDecodesStdlibOutput(t *testing.T) {
	data := randomData(5000, 2)
	var buf bytes.Buffer
	gw := stdgzip.NewWriter(&buf)
	gw.Name = "stdlib.bin"
	if _, err := gw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("got %d bytes, want %d", len(got), len(data))
	}
}

func TestStdlibDecodesOutput(t *testing.T) {
	data := randomData(5000, 3)
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	gr, err := stdgzip.NewReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(gr)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("got %d bytes, want %d", len(got), len(data))
	}
}

// TestEmptyStreamBytes pins the exact encoding of an empty member with no
// name, no mtime, and OS "unknown": the 10-byte header, the two-byte
// static DEFLATE block, and an all-zero trailer.
func TestEmptyStreamBytes(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriterLevel(&buf, 6)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	want := []byte{
		0x1f, 0x8b, 0x08, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0xff,
		0x03, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("empty stream = %x, want %x", buf.Bytes(), want)
	}

	r, err := NewReader(bytes.NewReader(want))
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil || len(got) != 0 {
		t.Fatalf("decode = %q, %v, want empty, nil", got, err)
	}
}

func TestChecksumMismatchDetected(t *testing.T) {
	data := randomData(1000, 4)
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Write(data)
	w.Close()

	corrupted := buf.Bytes()
	corrupted[len(corrupted)-1] ^= 0xff

	r, err := NewReader(bytes.NewReader(corrupted))
	if err != nil {
		t.Fatal(err)
	}
	_, err = io.ReadAll(r)
	if err == nil {
		t.Fatal("expected a checksum or header error on corrupted trailer")
	}
}
