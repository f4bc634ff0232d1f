package models

import "lsl3d/pkg/rle"

// Line is a view of one coded row together with the labels of its
// segments. Segment k spans [RLC[2k], RLC[2k+1]).
type Line struct {
	// RLC holds Len boundaries followed by two sentinels.
	RLC []int16

	// Len is the number of boundaries, twice the number of segments.
	Len int

	// ERA holds the provisional label of every segment. It is nil for
	// rows whose labels are implicit.
	ERA []int32

	// Offset is the label of segment 0 when ERA is nil.
	Offset int32

	// ER is the edge-rank row, or nil when the scan does not keep one.
	ER []int16
}

// Segments returns the number of segments in the line.
func (l Line) Segments() int {
	return l.Len / 2
}

// Label returns the provisional label of segment k.
func (l Line) Label(k int) int32 {
	if l.ERA != nil {
		return l.ERA[k]
	}
	return l.Offset + int32(k)
}

// EmptyLine returns a line with no segments. Its ER row is all zeros, so
// any probe into it finds nothing.
func EmptyLine(width int) Line {
	return Line{
		RLC: []int16{rle.Sentinel, rle.Sentinel},
		ERA: []int32{0},
		ER:  make([]int16, rle.ERStride(width)),
	}
}

// TempLine is a scratch line written by the strategies that first merge
// a row with the previous slice.
type TempLine struct {
	Line
}

// NewTempLine allocates a scratch line for rows of the given width.
func NewTempLine(width int) *TempLine {
	t := &TempLine{}
	t.RLC = make([]int16, rle.Stride(width))
	t.ERA = make([]int32, rle.Stride(width)/2+1)
	t.Reset()
	return t
}

// Reset empties the line.
func (t *TempLine) Reset() {
	t.Len = 0
	t.RLC[0], t.RLC[1] = rle.Sentinel, rle.Sentinel
}

// Push appends segment [s, e) with label.
func (t *TempLine) Push(s, e int16, label int32) {
	t.ERA[t.Len/2] = label
	t.RLC[t.Len] = s
	t.RLC[t.Len+1] = e
	t.Len += 2
}

// Close writes the sentinels after the last segment.
func (t *TempLine) Close() {
	t.RLC[t.Len] = rle.Sentinel
	t.RLC[t.Len+1] = rle.Sentinel
}
