package zlib

import (
	"bytes"
	stdzlib "compress/zlib"
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
}

func TestHeaderCheckBits(t *testing.T) {
	for level := -1; level <= 9; level++ {
		var buf bytes.Buffer
		w, err := NewWriterLevel(&buf, level)
		if err != nil {
			t.Fatal(err)
		}
		w.Write([]byte("hello"))
		w.Close()

		head := buf.Bytes()[:2]
		word := uint16(head[0])<<8 | uint16(head[1])
		if word%31 != 0 {
			t.Fatalf("level %d: header %04x not a multiple of 31", level, word)
		}
	}
}

func TestDecodesStdlibOutput(t *testing.T) {
	data := randomData(5000, 2)
	var buf bytes.Buffer
	zw := stdzlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
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

	zr, err := stdzlib.NewReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("got %d bytes, want %d", len(got), len(data))
	}
}

func TestRejectsCorruptHeader(t *testing.T) {
	data := randomData(1000, 4)
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Write(data)
	w.Close()

	corrupted := buf.Bytes()
	corrupted[0] ^= 0xff

	_, err := NewReader(bytes.NewReader(corrupted))
	if err == nil {
		t.Fatal("expected a header error for a corrupted CMF byte")
	}
}

func TestChecksumMismatchDetected(t *testing.T) {
	data := randomData(1000, 5)
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
		t.Fatal("expected a checksum error on corrupted trailer")
	}
}
