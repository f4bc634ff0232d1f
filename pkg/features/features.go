// Package features accumulates per-component statistics while labels are
// being resolved.
//
// A Table is indexed by label. Statistics of a provisional label are only
// meaningful while that label is a root; merging two classes folds the
// entry of the higher root into the lower one.
package features

import (
	"fmt"
	"math"
)

const (
	noLow  = math.MaxInt32
	noHigh = 0
)

// Table holds the statistics of every label as parallel arrays.
// Arrays of disabled groups are nil.
type Table struct {
	cfg Config

	// S is the voxel count.
	S []uint32

	// Sx, Sy and Sz are the coordinate sums.
	Sx, Sy, Sz []int64

	// Lo and Hi bound the component per axis, Hi exclusive.
	LoX, LoY, LoZ []int32
	HiX, HiY, HiZ []int32
}

// NewTable allocates room for size labels.
func NewTable(cfg Config, size int) *Table {
	t := &Table{cfg: cfg}
	threeD := cfg.Dims != 2
	if cfg.Volume {
		t.S = make([]uint32, size)
	}
	if cfg.Moments {
		t.Sx = make([]int64, size)
		t.Sy = make([]int64, size)
		if threeD {
			t.Sz = make([]int64, size)
		}
	}
	if cfg.BoundingBox {
		t.LoX = make([]int32, size)
		t.LoY = make([]int32, size)
		t.HiX = make([]int32, size)
		t.HiY = make([]int32, size)
		if threeD {
			t.LoZ = make([]int32, size)
			t.HiZ = make([]int32, size)
		}
	}
	return t
}

// Config returns the configuration the table was built with.
func (t *Table) Config() Config {
	return t.cfg
}

// Len returns the number of label slots.
func (t *Table) Len() int {
	switch {
	case t.S != nil:
		return len(t.S)
	case t.Sx != nil:
		return len(t.Sx)
	case t.LoX != nil:
		return len(t.LoX)
	}
	return 0
}

// Init clears labels [lo, hi): counts and sums to zero, boxes to the
// empty box.
func (t *Table) Init(lo, hi int) {
	if t.S != nil {
		clear(t.S[lo:hi])
	}
	if t.Sx != nil {
		clear(t.Sx[lo:hi])
		clear(t.Sy[lo:hi])
		if t.Sz != nil {
			clear(t.Sz[lo:hi])
		}
	}
	if t.LoX != nil {
		for l := lo; l < hi; l++ {
			t.LoX[l], t.LoY[l] = noLow, noLow
			t.HiX[l], t.HiY[l] = noHigh, noHigh
		}
		if t.LoZ != nil {
			for l := lo; l < hi; l++ {
				t.LoZ[l] = noLow
				t.HiZ[l] = noHigh
			}
		}
	}
}

// sumRange is x0 + ... + x1-1.
func sumRange(x0, x1 int) int64 {
	return int64(x0+x1-1) * int64(x1-x0) / 2
}

// NewComponent sets label to exactly the segment [x0, x1) of row in slice.
func (t *Table) NewComponent(label int32, row, slice, x0, x1 int) {
	n := x1 - x0
	if t.S != nil {
		t.S[label] = uint32(n)
	}
	if t.Sx != nil {
		t.Sx[label] = sumRange(x0, x1)
		t.Sy[label] = int64(row) * int64(n)
		if t.Sz != nil {
			t.Sz[label] = int64(slice) * int64(n)
		}
	}
	if t.LoX != nil {
		t.LoX[label], t.HiX[label] = int32(x0), int32(x1)
		t.LoY[label], t.HiY[label] = int32(row), int32(row+1)
		if t.LoZ != nil {
			t.LoZ[label], t.HiZ[label] = int32(slice), int32(slice+1)
		}
	}
}

// AddSegment adds the segment [x0, x1) of row in slice to label.
func (t *Table) AddSegment(label int32, row, slice, x0, x1 int) {
	n := x1 - x0
	if t.S != nil {
		t.S[label] += uint32(n)
	}
	if t.Sx != nil {
		t.Sx[label] += sumRange(x0, x1)
		t.Sy[label] += int64(row) * int64(n)
		if t.Sz != nil {
			t.Sz[label] += int64(slice) * int64(n)
		}
	}
	if t.LoX != nil {
		t.LoX[label] = min(t.LoX[label], int32(x0))
		t.HiX[label] = max(t.HiX[label], int32(x1))
		t.LoY[label] = min(t.LoY[label], int32(row))
		t.HiY[label] = max(t.HiY[label], int32(row+1))
		if t.LoZ != nil {
			t.LoZ[label] = min(t.LoZ[label], int32(slice))
			t.HiZ[label] = max(t.HiZ[label], int32(slice+1))
		}
	}
}

// AddPoint adds the single voxel (x, y, z) to label.
func (t *Table) AddPoint(label int32, x, y, z int) {
	t.AddSegment(label, y, z, x, x+1)
}

// Merge folds the statistics of i into j. Merging a label with itself
// is a no-op.
func (t *Table) Merge(i, j int32) {
	if i == j {
		return
	}
	if t.S != nil {
		t.S[j] += t.S[i]
	}
	if t.Sx != nil {
		t.Sx[j] += t.Sx[i]
		t.Sy[j] += t.Sy[i]
		if t.Sz != nil {
			t.Sz[j] += t.Sz[i]
		}
	}
	if t.LoX != nil {
		t.LoX[j] = min(t.LoX[j], t.LoX[i])
		t.LoY[j] = min(t.LoY[j], t.LoY[i])
		t.HiX[j] = max(t.HiX[j], t.HiX[i])
		t.HiY[j] = max(t.HiY[j], t.HiY[i])
		if t.LoZ != nil {
			t.LoZ[j] = min(t.LoZ[j], t.LoZ[i])
			t.HiZ[j] = max(t.HiZ[j], t.HiZ[i])
		}
	}
}

// Shift translates labels [lo, hi) by (dx, dy, dz), as if their voxels
// had been found in a volume placed at that offset.
func (t *Table) Shift(lo, hi int, dx, dy, dz int) {
	for l := lo; l < hi; l++ {
		if t.Sx != nil {
			var n int64
			if t.S != nil {
				n = int64(t.S[l])
			}
			t.Sx[l] += n * int64(dx)
			t.Sy[l] += n * int64(dy)
			if t.Sz != nil {
				t.Sz[l] += n * int64(dz)
			}
		}
		if t.LoX != nil && t.HiX[l] != noHigh {
			t.LoX[l] += int32(dx)
			t.HiX[l] += int32(dx)
			t.LoY[l] += int32(dy)
			t.HiY[l] += int32(dy)
			if t.LoZ != nil {
				t.LoZ[l] += int32(dz)
				t.HiZ[l] += int32(dz)
			}
		}
	}
}

// CopyEntry copies label from of src into label to of t. Both tables
// must track the same groups.
func (t *Table) CopyEntry(src *Table, from, to int32) {
	if t.S != nil {
		t.S[to] = src.S[from]
	}
	if t.Sx != nil {
		t.Sx[to] = src.Sx[from]
		t.Sy[to] = src.Sy[from]
		if t.Sz != nil {
			t.Sz[to] = src.Sz[from]
		}
	}
	if t.LoX != nil {
		t.LoX[to], t.HiX[to] = src.LoX[from], src.HiX[from]
		t.LoY[to], t.HiY[to] = src.LoY[from], src.HiY[from]
		if t.LoZ != nil {
			t.LoZ[to], t.HiZ[to] = src.LoZ[from], src.HiZ[from]
		}
	}
}

// Copy copies labels [lo, hi) of t into dst.
func (t *Table) Copy(dst *Table, lo, hi int) {
	for l := lo; l < hi; l++ {
		dst.CopyEntry(t, int32(l), int32(l))
	}
}

// RootVisitor enumerates the roots of a flattened resolver along with
// their final labels.
type RootVisitor interface {
	Roots(fn func(root, final int32))
}

// NormalizeFrom fills t, indexed by final label, from src, indexed by
// provisional root. Slot 0 is left as the empty entry.
func (t *Table) NormalizeFrom(src *Table, roots RootVisitor) {
	t.Init(0, 1)
	roots.Roots(func(root, final int32) {
		t.CopyEntry(src, root, final)
	})
}

// Equal compares labels [lo, hi) of t and o and describes the first
// difference. Tables tracking different groups are never equal.
func (t *Table) Equal(o *Table, lo, hi int) error {
	if t.cfg.Dims != o.cfg.Dims || t.cfg.Volume != o.cfg.Volume ||
		t.cfg.Moments != o.cfg.Moments || t.cfg.BoundingBox != o.cfg.BoundingBox {
		return fmt.Errorf("tables track different statistics")
	}
	for l := lo; l < hi; l++ {
		a, b := t.Component(int32(l)), o.Component(int32(l))
		if a != b {
			return fmt.Errorf("label %d differs: %+v != %+v", l, a, b)
		}
	}
	return nil
}
