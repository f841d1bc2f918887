// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package zlib implements RFC 1950 framing around the flate package's
// DEFLATE codec.
package zlib

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/elliotnunn/godeflate/checksum"
	"github.com/elliotnunn/godeflate/flate"
)

// ErrHeader reports a malformed zlib header (bad CMF/FLG or an
// unsupported compression method). It is also returned when the stream
// ends before the 4-byte Adler-32 trailer.
var ErrHeader = errors.New("zlib: invalid header")

// ErrChecksum reports an Adler-32 mismatch against the decompressed
// payload.
var ErrChecksum = errors.New("zlib: checksum mismatch")

const (
	cmDeflate  = 8
	cinfoMax32 = 7 // 32KB window, the only one this codec ever produces
)

// Writer compresses to w as a single zlib stream.
type Writer struct {
	w      io.Writer
	level  int
	buf    []byte
	adler  uint32
	closed bool
}

// NewWriter returns a Writer at flate.DefaultCompression.
func NewWriter(w io.Writer) *Writer {
	zw, _ := NewWriterLevel(w, flate.DefaultCompression)
	return zw
}

// NewWriterLevel returns a Writer at the given flate compression level.
func NewWriterLevel(w io.Writer, level int) (*Writer, error) {
	if level == flate.DefaultCompression {
		level = 6
	}
	if level < flate.NoCompression || level > flate.BestCompression {
		return nil, flate.ErrLevel
	}
	return &Writer{w: w, level: level}, nil
}

func (z *Writer) Write(p []byte) (int, error) {
	if z.closed {
		return 0, errors.New("zlib: write to closed Writer")
	}
	z.adler = checksum.Adler32(z.adler, p)
	z.buf = append(z.buf, p...)
	return len(p), nil
}

// Close writes the 2-byte header, the compressed body, and the 4-byte
// big-endian Adler-32 trailer (RFC 1950 §2).
func (z *Writer) Close() error {
	if z.closed {
		return nil
	}
	z.closed = true

	cmf := byte(cinfoMax32<<4 | cmDeflate)
	flg := zlibFLG(cmf, z.level)
	if _, err := z.w.Write([]byte{cmf, flg}); err != nil {
		return err
	}
	if _, err := z.w.Write(flate.Compress(z.buf, z.level)); err != nil {
		return err
	}
	var trailer [4]byte
	binary.BigEndian.PutUint32(trailer[:], z.adler)
	_, err := z.w.Write(trailer[:])
	return err
}

// zlibFLG picks the FLEVEL bits from the compression level and pads FLG
// so (cmf*256+flg) % 31 == 0, the FCHECK constraint RFC 1950 §2.2
// requires.
func zlibFLG(cmf byte, level int) byte {
	var flevel byte
	switch {
	case level < 2:
		flevel = 0
	case level < 6:
		flevel = 1
	case level == 6, level == flate.DefaultCompression:
		flevel = 2
	default:
		flevel = 3
	}
	flg := flevel << 6
	check := (int(cmf)*256 + int(flg)) % 31
	if check != 0 {
		flg += byte(31 - check)
	}
	return flg
}

// Reader decompresses a single zlib stream from r.
type Reader struct {
	r   io.Reader
	out *bytes.Reader
	err error
}

// NewReader reads and validates the zlib header from r.
func NewReader(r io.Reader) (*Reader, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, ErrHeader
	}
	cmf, flg := hdr[0], hdr[1]
	if cmf&0x0f != cmDeflate || cmf>>4 > cinfoMax32 {
		return nil, ErrHeader
	}
	if (int(cmf)*256+int(flg))%31 != 0 {
		return nil, ErrHeader
	}
	if flg&0x20 != 0 {
		// FDICT: a preset dictionary id follows; not supported.
		return nil, ErrHeader
	}
	return &Reader{r: r}, nil
}

// decode reads the rest of the stream (DEFLATE body plus the big-endian
// Adler-32 trailer), decompresses the body, and validates the trailer
// against it. Deferred to first Read, matching gzip.Reader's lazy-decode
// style.
func (z *Reader) decode() error {
	raw, err := io.ReadAll(z.r)
	if err != nil {
		return err
	}
	body, consumed, err := flate.DecompressPrefix(raw)
	if err != nil {
		return err
	}
	if consumed+4 > len(raw) {
		return ErrHeader
	}
	trailer := raw[consumed : consumed+4]
	if binary.BigEndian.Uint32(trailer) != checksum.Adler32(0, body) {
		return ErrChecksum
	}
	z.out = bytes.NewReader(body)
	return nil
}

func (z *Reader) Read(p []byte) (int, error) {
	if z.err != nil {
		return 0, z.err
	}
	if z.out == nil {
		if err := z.decode(); err != nil {
			z.err = err
			return 0, err
		}
	}
	n, err := z.out.Read(p)
	if err != nil {
		z.err = err
	}
	return n, err
}

func (z *Reader) Close() error { return nil }
