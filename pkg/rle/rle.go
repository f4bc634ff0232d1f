// Package rle converts rows of a binary volume into run-length coded
// segment lists.
//
// A coded row is a list of int16 boundaries [s0, e0, s1, e1, ...] where
// every segment is the half-open column range [s, e). The number of
// boundaries is always even. Two Sentinel values follow the last boundary
// so that merge loops can read one segment past the end without a bounds
// check.
package rle

import "math"

// Sentinel terminates every coded row. It compares greater than any
// column of a valid row, even after adding a reach of one.
const Sentinel int16 = math.MaxInt16 - 1

// MaxWidth is the widest row that can be coded without colliding with
// the sentinel.
const MaxWidth = int(Sentinel) - 2

// Stride returns the number of int16 slots a coded row of the given width
// needs: at most width+1 boundaries plus two sentinels.
func Stride(width int) int {
	return width + 3
}

// ERStride returns the length of an edge-rank row for the given width.
// Index 0 is the left border (always 0) and index width+1 the right
// border (always the boundary count of the row).
func ERStride(width int) int {
	return width + 2
}

// Encoder codes one row at a time. Implementations differ in speed only:
// for the same input they write identical boundaries and edge ranks.
type Encoder interface {
	// Encode writes the boundaries of row into rlc, followed by two
	// sentinels, and returns the number of boundaries written. rlc must
	// hold at least Stride(len(row)) values.
	Encode(row []uint8, rlc []int16) int

	// EncodeER is Encode that also fills er, which must hold
	// ERStride(len(row)) values. er[c+1] is the number of boundaries at
	// columns <= c, so an odd value means column c lies inside segment
	// (er[c+1]-1)/2.
	EncodeER(row []uint8, rlc []int16, er []int16) int

	// Name identifies the encoder in logs and configuration.
	Name() string
}

// Kind selects an encoder by name.
type Kind string

const (
	// KindAuto picks the fastest encoder the CPU supports.
	KindAuto Kind = "auto"
	// KindScalar is the branch-free column-at-a-time encoder.
	KindScalar Kind = "scalar"
	// KindBranchy is the column-at-a-time encoder with an explicit edge test.
	KindBranchy Kind = "branchy"
	// KindWord processes eight columns per 64-bit load.
	KindWord Kind = "word"
)

// New returns the encoder for kind, or false if the name is unknown.
func New(kind Kind) (Encoder, bool) {
	switch kind {
	case KindAuto, "":
		return Auto(), true
	case KindScalar:
		return Scalar{}, true
	case KindBranchy:
		return Branchy{}, true
	case KindWord:
		return Word{}, true
	}
	return nil, false
}

// Auto returns the word encoder when the CPU handles unaligned 64-bit
// loads and population counts natively, and the scalar encoder otherwise.
func Auto() Encoder {
	if hasFastWords() {
		return Word{}
	}
	return Scalar{}
}

// terminate writes the two sentinels after n boundaries.
func terminate(rlc []int16, n int) {
	rlc[n] = Sentinel
	rlc[n+1] = Sentinel
}
