// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package gzip implements RFC 1952 framing around the flate package's
// DEFLATE codec.
package gzip

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/elliotnunn/godeflate/checksum"
	"github.com/elliotnunn/godeflate/flate"
)

const (
	magic1 = 0x1f
	magic2 = 0x8b

	methodDeflate = 8

	flagText    = 1 << 0
	flagHCRC    = 1 << 1
	flagExtra   = 1 << 2
	flagName    = 1 << 3
	flagComment = 1 << 4
)

// ErrHeader reports a malformed gzip header (bad magic or an
// unsupported compression method). It is also returned when the stream
// ends before the 8-byte trailer.
var ErrHeader = errors.New("gzip: invalid header")

// ErrChecksum reports a CRC-32 or ISIZE mismatch against the decompressed
// payload.
var ErrChecksum = errors.New("gzip: checksum mismatch")

// Header holds the gzip member metadata a Writer emits or a Reader
// recovers, mirroring RFC 1952 §2.3's optional fields.
type Header struct {
	Name    string
	Comment string
	Extra   []byte
	ModTime time.Time
	OS      byte
}

// Writer compresses to w as a single gzip member.
type Writer struct {
	w      io.Writer
	level  int
	Header Header
	buf    []byte
	crc    uint32
	closed bool
}

// NewWriter returns a Writer at flate.DefaultCompression.
func NewWriter(w io.Writer) *Writer {
	gw, _ := NewWriterLevel(w, flate.DefaultCompression)
	return gw
}

// NewWriterLevel returns a Writer at the given flate compression level.
func NewWriterLevel(w io.Writer, level int) (*Writer, error) {
	if level == flate.DefaultCompression {
		level = 6
	}
	if level < flate.NoCompression || level > flate.BestCompression {
		return nil, flate.ErrLevel
	}
	// RFC 1952 §2.3.1: OS 255 means "unknown". Callers that know better
	// can overwrite Header.OS before Close.
	return &Writer{w: w, level: level, Header: Header{OS: 0xff}}, nil
}

func (z *Writer) Write(p []byte) (int, error) {
	if z.closed {
		return 0, fmt.Errorf("gzip: write to closed Writer")
	}
	z.crc = checksum.CRC32(z.crc, p)
	z.buf = append(z.buf, p...)
	return len(p), nil
}

// Close writes the header, the compressed body, and the CRC32/ISIZE
// trailer, in that order, then flushes downstream.
func (z *Writer) Close() error {
	if z.closed {
		return nil
	}
	z.closed = true

	if err := z.writeHeader(); err != nil {
		return err
	}
	if _, err := z.w.Write(flate.Compress(z.buf, z.level)); err != nil {
		return err
	}

	var trailer [8]byte
	binary.LittleEndian.PutUint32(trailer[0:4], z.crc)
	binary.LittleEndian.PutUint32(trailer[4:8], uint32(len(z.buf)))
	_, err := z.w.Write(trailer[:])
	return err
}

func (z *Writer) writeHeader() error {
	var flags byte
	if z.Header.Name != "" {
		flags |= flagName
	}
	if z.Header.Comment != "" {
		flags |= flagComment
	}
	if len(z.Header.Extra) > 0 {
		flags |= flagExtra
	}

	hdr := make([]byte, 0, 10)
	hdr = append(hdr, magic1, magic2, methodDeflate, flags)
	var mtime uint32
	if !z.Header.ModTime.IsZero() {
		mtime = uint32(z.Header.ModTime.Unix())
	}
	var mtimeBuf [4]byte
	binary.LittleEndian.PutUint32(mtimeBuf[:], mtime)
	hdr = append(hdr, mtimeBuf[:]...)

	// XFL hints at the compressor's speed/ratio tradeoff (RFC 1952
	// §2.3.1): 2 for maximum compression, 4 for fastest.
	var xfl byte
	switch {
	case z.level == flate.BestSpeed:
		xfl = 4
	case z.level >= 10:
		xfl = 2
	}
	hdr = append(hdr, xfl, z.Header.OS)

	if flags&flagExtra != 0 {
		var extraLen [2]byte
		binary.LittleEndian.PutUint16(extraLen[:], uint16(len(z.Header.Extra)))
		hdr = append(hdr, extraLen[:]...)
		hdr = append(hdr, z.Header.Extra...)
	}
	if flags&flagName != 0 {
		hdr = append(hdr, []byte(z.Header.Name)...)
		hdr = append(hdr, 0)
	}
	if flags&flagComment != 0 {
		hdr = append(hdr, []byte(z.Header.Comment)...)
		hdr = append(hdr, 0)
	}

	_, err := z.w.Write(hdr)
	return err
}

// Reader decompresses a single gzip member from r.
type Reader struct {
	Header
	r   io.Reader
	out *bytes.Reader
	err error
}

// NewReader reads and validates the gzip header from r.
func NewReader(r io.Reader) (*Reader, error) {
	z := &Reader{r: r}
	if err := z.readHeader(); err != nil {
		return nil, err
	}
	return z, nil
}

// decode reads the rest of the member (DEFLATE body plus the CRC32/ISIZE
// trailer), decompresses the body, and validates the trailer against it.
// Deferred to first Read, so that NewReader alone never reports a
// checksum error that only a full read would actually encounter.
func (z *Reader) decode() error {
	raw, err := io.ReadAll(z.r)
	if err != nil {
		return err
	}
	body, consumed, err := flate.DecompressPrefix(raw)
	if err != nil {
		return err
	}
	if consumed+8 > len(raw) {
		return ErrHeader
	}
	trailer := raw[consumed : consumed+8]
	wantCRC := binary.LittleEndian.Uint32(trailer[0:4])
	wantSize := binary.LittleEndian.Uint32(trailer[4:8])
	if wantCRC != checksum.CRC32(0, body) || wantSize != uint32(len(body)) {
		return ErrChecksum
	}
	z.out = bytes.NewReader(body)
	return nil
}

func (z *Reader) readHeader() error {
	var hdr [10]byte
	if _, err := io.ReadFull(z.r, hdr[:]); err != nil {
		return ErrHeader
	}
	if hdr[0] != magic1 || hdr[1] != magic2 || hdr[2] != methodDeflate {
		return ErrHeader
	}
	flags := hdr[3]
	z.OS = hdr[9]
	if mtime := binary.LittleEndian.Uint32(hdr[4:8]); mtime != 0 {
		z.ModTime = time.Unix(int64(mtime), 0)
	}

	if flags&flagExtra != 0 {
		var l [2]byte
		if _, err := io.ReadFull(z.r, l[:]); err != nil {
			return ErrHeader
		}
		extra := make([]byte, binary.LittleEndian.Uint16(l[:]))
		if _, err := io.ReadFull(z.r, extra); err != nil {
			return ErrHeader
		}
		z.Extra = extra
	}
	if flags&flagName != 0 {
		s, err := readCString(z.r)
		if err != nil {
			return ErrHeader
		}
		z.Name = s
	}
	if flags&flagComment != 0 {
		s, err := readCString(z.r)
		if err != nil {
			return ErrHeader
		}
		z.Comment = s
	}
	if flags&flagHCRC != 0 {
		var hcrc [2]byte
		if _, err := io.ReadFull(z.r, hcrc[:]); err != nil {
			return ErrHeader
		}
	}
	return nil
}

func readCString(r io.Reader) (string, error) {
	var buf []byte
	var b [1]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return "", err
		}
		if b[0] == 0 {
			return string(buf), nil
		}
		buf = append(buf, b[0])
	}
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
