package unify

import "fmt"

// Neighbor names one of the already-scanned rows a segment may touch.
type Neighbor int

const (
	// Prev is the previous row of the current slice.
	Prev Neighbor = iota
	// Back is the same row of the previous slice.
	Back
	// BackUp is the previous row of the previous slice.
	BackUp
	// BackDown is the next row of the previous slice.
	BackDown

	numNeighbors
)

// Pass merges the current row with one neighbor row. Reach is 1 when
// segments touching only at a corner are connected and 0 when they must
// share a column.
type Pass struct {
	Neighbor Neighbor
	Reach    int32
}

// Connectivity is the number of neighbors of a voxel: 4 or 8 for images,
// 6, 18 or 26 for volumes.
type Connectivity int

const (
	Conn4  Connectivity = 4
	Conn8  Connectivity = 8
	Conn6  Connectivity = 6
	Conn18 Connectivity = 18
	Conn26 Connectivity = 26
)

// Is2D reports whether c only applies to single-slice volumes.
func (c Connectivity) Is2D() bool {
	return c == Conn4 || c == Conn8
}

// Diagonal reports whether every neighbor row is reached through corners.
func (c Connectivity) Diagonal() bool {
	return c == Conn8 || c == Conn26
}

// Passes returns the neighbor passes of c, in the order they run.
func (c Connectivity) Passes() ([]Pass, error) {
	switch c {
	case Conn4:
		return []Pass{{Prev, 0}}, nil
	case Conn8:
		return []Pass{{Prev, 1}}, nil
	case Conn6:
		return []Pass{{Prev, 0}, {Back, 0}}, nil
	case Conn18:
		return []Pass{{Prev, 1}, {Back, 1}, {BackUp, 0}, {BackDown, 0}}, nil
	case Conn26:
		return []Pass{{Prev, 1}, {Back, 1}, {BackUp, 1}, {BackDown, 1}}, nil
	}
	return nil, fmt.Errorf("%w: connectivity %d", ErrUnsupported, int(c))
}
