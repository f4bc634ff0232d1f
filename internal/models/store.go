// Package models holds the scan-scoped tables of a labeling pass: the
// run-length coded rows, the labels of their segments and the edge-rank
// rows used by the range-lookup strategy.
package models

import (
	"lsl3d/pkg/rle"
)

// Layout selects which per-segment label storage a Store keeps.
type Layout int

const (
	// LabelPerSegment stores one label per segment (ERA table).
	LabelPerSegment Layout = iota
	// LabelPerRow stores only the label of the first segment of each row.
	LabelPerRow
)

// Store owns every row of a scan. Rows are addressed by (row, slice).
type Store struct {
	Width, Height, Depth int

	rlcStride int
	eraStride int

	rlc     []int16
	lengths []int32
	era     []int32
	offsets []int32

	// er keeps two slices of edge-rank rows, indexed by slice parity.
	er       []int16
	erStride int

	empty Line
}

// NewStore allocates the tables for a width x height x depth scan.
// withER adds the two edge-rank planes.
func NewStore(width, height, depth int, layout Layout, withER bool) *Store {
	rows := height * depth
	s := &Store{
		Width:     width,
		Height:    height,
		Depth:     depth,
		rlcStride: rle.Stride(width),
		eraStride: rle.Stride(width) / 2,
		lengths:   make([]int32, rows),
		empty:     EmptyLine(width),
	}
	s.rlc = make([]int16, rows*s.rlcStride)
	switch layout {
	case LabelPerSegment:
		s.era = make([]int32, rows*s.eraStride)
	case LabelPerRow:
		s.offsets = make([]int32, rows)
	}
	if withER {
		s.erStride = rle.ERStride(width)
		s.er = make([]int16, 2*height*s.erStride)
	}
	return s
}

// Bytes returns the memory held by the store.
func (s *Store) Bytes() int {
	return 2*len(s.rlc) + 4*len(s.lengths) + 4*len(s.era) + 4*len(s.offsets) + 2*len(s.er)
}

func (s *Store) index(row, slice int) int {
	return slice*s.Height + row
}

// RLC returns the coded row buffer of (row, slice).
func (s *Store) RLC(row, slice int) []int16 {
	i := s.index(row, slice) * s.rlcStride
	return s.rlc[i : i+s.rlcStride]
}

// ER returns the edge-rank row of (row, slice). Only the current and the
// previous slice are kept.
func (s *Store) ER(row, slice int) []int16 {
	if s.er == nil {
		return nil
	}
	i := ((slice&1)*s.Height + row) * s.erStride
	return s.er[i : i+s.erStride]
}

// SetLen records the boundary count of (row, slice).
func (s *Store) SetLen(row, slice, n int) {
	s.lengths[s.index(row, slice)] = int32(n)
}

// SetOffset records the label of segment 0 of (row, slice).
func (s *Store) SetOffset(row, slice int, offset int32) {
	if s.offsets != nil {
		s.offsets[s.index(row, slice)] = offset
	}
}

// Line returns the view of (row, slice), or an empty line when the
// position is outside the volume.
func (s *Store) Line(row, slice int) Line {
	if row < 0 || row >= s.Height || slice < 0 || slice >= s.Depth {
		return s.empty
	}
	i := s.index(row, slice)
	l := Line{
		RLC: s.RLC(row, slice),
		Len: int(s.lengths[i]),
		ER:  s.ER(row, slice),
	}
	if s.era != nil {
		l.ERA = s.era[i*s.eraStride : (i+1)*s.eraStride]
	} else {
		l.Offset = s.offsets[i]
	}
	return l
}

// Empty returns the shared line without segments.
func (s *Store) Empty() Line {
	return s.empty
}

// Segments returns the total number of segments in the store.
func (s *Store) Segments() int {
	total := 0
	for _, n := range s.lengths {
		total += int(n) / 2
	}
	return total
}
