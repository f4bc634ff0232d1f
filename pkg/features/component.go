package features

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Component is a copy of one table entry. Fields of untracked groups are
// zero; Min/Max of an empty entry are the empty box.
type Component struct {
	Label  int32
	Volume uint32
	Sum    [3]int64
	Min    [3]int32
	Max    [3]int32
}

// Component returns the entry of label.
func (t *Table) Component(label int32) Component {
	c := Component{Label: label}
	if t.S != nil {
		c.Volume = t.S[label]
	}
	if t.Sx != nil {
		c.Sum[0], c.Sum[1] = t.Sx[label], t.Sy[label]
		if t.Sz != nil {
			c.Sum[2] = t.Sz[label]
		}
	}
	if t.LoX != nil {
		c.Min[0], c.Max[0] = t.LoX[label], t.HiX[label]
		c.Min[1], c.Max[1] = t.LoY[label], t.HiY[label]
		if t.LoZ != nil {
			c.Min[2], c.Max[2] = t.LoZ[label], t.HiZ[label]
		}
	}
	return c
}

// Centroid returns the mean voxel position of the component of label.
// The table must have been created with Centroids set.
func (t *Table) Centroid(label int32) ([3]float64, error) {
	var out [3]float64
	if !t.cfg.Centroids {
		return out, fmt.Errorf("%w: centroids were not requested", ErrMissingStatistic)
	}
	if t.S == nil || t.Sx == nil {
		return out, fmt.Errorf("%w: centroid needs moments and volume", ErrMissingStatistic)
	}
	n := float64(t.S[label])
	if n == 0 {
		return out, nil
	}
	out[0] = float64(t.Sx[label]) / n
	out[1] = float64(t.Sy[label]) / n
	if t.Sz != nil {
		out[2] = float64(t.Sz[label]) / n
	}
	return out, nil
}

// FillRatio returns the voxel count of label divided by the volume of
// its bounding box. The table must have been created with FillRatio set.
func (t *Table) FillRatio(label int32) (float64, error) {
	if !t.cfg.FillRatio {
		return 0, fmt.Errorf("%w: fill ratio was not requested", ErrMissingStatistic)
	}
	if t.S == nil || t.LoX == nil {
		return 0, fmt.Errorf("%w: fill ratio needs bounding box and volume", ErrMissingStatistic)
	}
	box := int64(t.HiX[label]-t.LoX[label]) * int64(t.HiY[label]-t.LoY[label])
	if t.LoZ != nil {
		box *= int64(t.HiZ[label] - t.LoZ[label])
	}
	if t.S[label] == 0 || box <= 0 {
		return 0, nil
	}
	return float64(t.S[label]) / float64(box), nil
}

// Summary describes the size distribution of a set of components.
type Summary struct {
	Count  int
	Voxels uint64
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Median float64
}

// Summarize computes size statistics over labels 1..count of a table
// indexed by final label.
func Summarize(t *Table, count int) (Summary, error) {
	if t.S == nil {
		return Summary{}, fmt.Errorf("%w: summary needs volume", ErrMissingStatistic)
	}
	s := Summary{Count: count}
	if count == 0 {
		return s, nil
	}

	sizes := make([]float64, count)
	for l := 1; l <= count; l++ {
		sizes[l-1] = float64(t.S[l])
		s.Voxels += uint64(t.S[l])
	}
	sort.Float64s(sizes)

	s.Min = sizes[0]
	s.Max = sizes[count-1]
	s.Mean, s.StdDev = stat.MeanStdDev(sizes, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, sizes, nil)
	return s, nil
}
