package flate

// token is one LZ77 symbol produced by a parser: either a literal byte
// or a length/offset back-reference. A parser never
// emits a match shorter than minMatchLength or one reaching past the
// slice it was given.
type token struct {
	isMatch bool
	literal byte
	length  uint32
	offset  uint32
}

func literalToken(b byte) token { return token{literal: b} }

func matchToken(length, offset uint32) token {
	return token{isMatch: true, length: length, offset: offset}
}
