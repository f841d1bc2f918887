// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flate

import (
	"bytes"
	"io"
)

// Reader is an io.ReadCloser that decompresses a complete DEFLATE
// stream. It reads its whole source into memory up front and runs
// Decompress once; chunk-wise, bounded-memory decompression is not
// attempted here.
type Reader struct {
	r   io.Reader
	buf *bytes.Reader
}

// NewReader wraps r, which must produce a complete DEFLATE stream.
// Decompression happens lazily, on the first Read call, so construction
// itself cannot fail.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (z *Reader) Read(p []byte) (int, error) {
	if z.buf == nil {
		raw, err := io.ReadAll(z.r)
		if err != nil {
			return 0, err
		}
		out, err := Decompress(raw)
		if err != nil {
			return 0, err
		}
		z.buf = bytes.NewReader(out)
	}
	return z.buf.Read(p)
}

func (z *Reader) Close() error { return nil }
